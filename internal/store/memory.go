package store

import "sync"

// MemStore is an in-memory Store for tests.  It copies on read and
// write so callers can't alias internal state.
type MemStore struct {
	mu       sync.Mutex
	servers  []ServerRow
	admins   []string
	commands []string

	// FailNext, when set, makes the next mutation return this error.
	// Lets tests exercise store-failure paths.
	FailNext error
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *MemStore) Servers() ([]ServerRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ServerRow(nil), m.servers...), nil
}

func (m *MemStore) PutServers(rows []ServerRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.servers = append([]ServerRow(nil), rows...)
	return nil
}

func (m *MemStore) Admins() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.admins...), nil
}

func (m *MemStore) PutAdmins(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.admins = append([]string(nil), ids...)
	return nil
}

func (m *MemStore) Commands() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...), nil
}

func (m *MemStore) PutCommands(cmds []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.commands = append([]string(nil), cmds...)
	return nil
}

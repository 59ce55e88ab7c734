// Package store persists the gateway's three record collections:
// servers, admin identities, and default-command shortcuts.
//
// The on-disk layout is deliberately plain text so an operator can
// inspect and repair it with a text editor: one server per CSV row
// under a header, one admin per line, one shortcut per line.  Every
// mutation rewrites the whole collection; at this layer reads and
// writes are atomic per call.
package store

// ServerRow is the persisted form of a server record.  The secret is
// stored as given — encrypting it at rest is out of scope.
type ServerRow struct {
	Host     string
	Username string
	Secret   string
	AddedBy  string // caller identity that added the record
	AddedAt  string // UTC timestamp, "2006-01-02 15:04:05"
}

// Store is the record persistence collaborator.  Implementations:
// FileStore for production, MemStore for tests.
type Store interface {
	Servers() ([]ServerRow, error)
	PutServers(rows []ServerRow) error

	Admins() ([]string, error)
	PutAdmins(ids []string) error

	Commands() ([]string, error)
	PutCommands(cmds []string) error
}

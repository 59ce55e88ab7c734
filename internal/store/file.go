package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// serversHeader is the first row of the servers CSV file.
var serversHeader = []string{"HOST", "USERNAME", "SECRET", "ADDED_BY", "ADDED_AT"}

// FileStore keeps each collection in its own file under a data
// directory.  Mutations write a temp file and rename it into place so
// a crash never leaves a half-written collection.
type FileStore struct {
	serversPath  string
	adminsPath   string
	commandsPath string
}

// NewFileStore creates a store over the given file paths and ensures
// all three files exist, creating the directory and empty files on
// first run.
func NewFileStore(serversPath, adminsPath, commandsPath string) (*FileStore, error) {
	s := &FileStore{
		serversPath:  serversPath,
		adminsPath:   adminsPath,
		commandsPath: commandsPath,
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) init() error {
	if err := os.MkdirAll(filepath.Dir(s.serversPath), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if _, err := os.Stat(s.serversPath); os.IsNotExist(err) {
		if err := s.PutServers(nil); err != nil {
			return err
		}
	}
	for _, p := range []string{s.adminsPath, s.commandsPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			if err := writeFileAtomic(p, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// ── Servers (CSV) ────────────────────────────────────────────────────

// Servers reads every server row, skipping the header and any short or
// blank rows left by manual edits.
func (s *FileStore) Servers() ([]ServerRow, error) {
	f, err := os.Open(s.serversPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading servers: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.serversPath, err)
	}

	var rows []ServerRow
	for i, rec := range records {
		if i == 0 || len(rec) < 3 {
			continue
		}
		row := ServerRow{Host: rec[0], Username: rec[1], Secret: rec[2]}
		if len(rec) > 3 {
			row.AddedBy = rec[3]
		}
		if len(rec) > 4 {
			row.AddedAt = rec[4]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// PutServers rewrites the whole servers file, header included.
func (s *FileStore) PutServers(rows []ServerRow) error {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(serversHeader); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{row.Host, row.Username, row.Secret, row.AddedBy, row.AddedAt}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return writeFileAtomic(s.serversPath, []byte(sb.String()))
}

// ── Admins and commands (one entry per line) ─────────────────────────

func (s *FileStore) Admins() ([]string, error) { return readLines(s.adminsPath) }

func (s *FileStore) PutAdmins(ids []string) error { return writeLines(s.adminsPath, ids) }

func (s *FileStore) Commands() ([]string, error) { return readLines(s.commandsPath) }

func (s *FileStore) PutCommands(cmds []string) error { return writeLines(s.commandsPath, cmds) }

// ── helpers ──────────────────────────────────────────────────────────

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func writeLines(path string, lines []string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return writeFileAtomic(path, []byte(sb.String()))
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

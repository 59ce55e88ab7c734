package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(
		filepath.Join(dir, "servers.csv"),
		filepath.Join(dir, "admins.txt"),
		filepath.Join(dir, "commands.txt"),
	)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s, dir
}

func TestFileStore_FirstRunCreatesFiles(t *testing.T) {
	_, dir := newTestStore(t)

	for _, name := range []string{"servers.csv", "admins.txt", "commands.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "servers.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "HOST,USERNAME,SECRET,ADDED_BY,ADDED_AT") {
		t.Errorf("servers file missing header: %q", data)
	}
}

func TestFileStore_ServersRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	rows := []ServerRow{
		{Host: "10.0.0.5", Username: "root", Secret: "hunter2", AddedBy: "42", AddedAt: "2026-08-24 10:00:00"},
		{Host: "db.internal", Username: "deploy", Secret: "s3cret, with comma", AddedBy: "42", AddedAt: "2026-08-24 10:05:00"},
	}
	if err := s.PutServers(rows); err != nil {
		t.Fatalf("PutServers: %v", err)
	}

	got, err := s.Servers()
	if err != nil {
		t.Fatalf("Servers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Secret != "s3cret, with comma" {
		t.Errorf("CSV quoting broken: secret = %q", got[1].Secret)
	}
	if got[0] != rows[0] {
		t.Errorf("row 0 = %+v, want %+v", got[0], rows[0])
	}
}

func TestFileStore_SkipsMalformedRows(t *testing.T) {
	s, dir := newTestStore(t)

	// Simulate a hand-edited file with a short row and a blank line.
	content := "HOST,USERNAME,SECRET,ADDED_BY,ADDED_AT\n" +
		"10.0.0.5,root,pw,1,2026-01-01 00:00:00\n" +
		"orphan\n" +
		"\n" +
		"10.0.0.6,admin,pw2,1,2026-01-02 00:00:00\n"
	if err := os.WriteFile(filepath.Join(dir, "servers.csv"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := s.Servers()
	if err != nil {
		t.Fatalf("Servers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (malformed rows skipped)", len(got))
	}
	if got[1].Host != "10.0.0.6" {
		t.Errorf("row 1 host = %q", got[1].Host)
	}
}

func TestFileStore_AdminsRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	if got, err := s.Admins(); err != nil || len(got) != 0 {
		t.Fatalf("fresh admins = %v, %v", got, err)
	}

	if err := s.PutAdmins([]string{"1001", "ops-lead"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Admins()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "1001" || got[1] != "ops-lead" {
		t.Errorf("admins = %v", got)
	}
}

func TestFileStore_CommandsRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	cmds := []string{"df -h", "uptime", "free -m"}
	if err := s.PutCommands(cmds); err != nil {
		t.Fatal(err)
	}
	got, err := s.Commands()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2] != "free -m" {
		t.Errorf("commands = %v", got)
	}
}

func TestFileStore_ReadLinesSkipsBlanks(t *testing.T) {
	s, dir := newTestStore(t)

	content := "1001\n\n  \n1002\n"
	if err := os.WriteFile(filepath.Join(dir, "admins.txt"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := s.Admins()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("admins = %v, want 2 entries", got)
	}
}

func TestFileStore_RewriteReplacesContent(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.PutCommands([]string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutCommands([]string{"b"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Commands()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("commands = %v, want [b]", got)
	}
}

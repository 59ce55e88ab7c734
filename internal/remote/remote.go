// Package remote owns the single live SSH session and serializes all
// access to it.
//
// The Manager is the only component allowed to touch the transport
// handle.  One mutex covers connect, execute, and disconnect as a
// group: process-wide, at most one of the three runs at a time, so a
// long-running remote command blocks every other caller until it
// finishes or times out.  That serialization is a documented
// consequence of the single-session design, not an accident.
package remote

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shellgate/internal/registry"
)

// Result carries the output of one remote command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Conn is one live remote shell connection.  Run opens a fresh exec
// channel per command; Close tears the whole connection down.
type Conn interface {
	Run(ctx context.Context, command string) (Result, error)
	Close() error
}

// Transport dials remote hosts.  The production implementation is SSH;
// tests substitute a fake.
type Transport interface {
	Dial(ctx context.Context, host, username, secret string) (Conn, error)
}

// State is the connection lifecycle.  Connecting is a transient guard
// held only while a handshake is in flight; callers observing state
// between operations see Disconnected or Connected.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Session describes the live connection.  The transport handle itself
// never leaves the Manager.
type Session struct {
	ID          uuid.UUID
	Record      registry.Record
	ConnectedAt time.Time
}

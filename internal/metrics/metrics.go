// Package metrics provides lightweight counters for the gateway's
// runtime statistics.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks what the gateway has done since process start.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	connectsAttempted atomic.Int64
	connectsSucceeded atomic.Int64
	commandsExecuted  atomic.Int64
	commandsRejected  atomic.Int64
	authDenials       atomic.Int64
	execFailures      atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection counters ──────────────────────────────────────────────

// ConnectAttempted records a connect call reaching the transport.
func (c *Collector) ConnectAttempted() {
	if c == nil {
		return
	}
	c.connectsAttempted.Add(1)
}

// ConnectSucceeded records a completed handshake.
func (c *Collector) ConnectSucceeded() {
	if c == nil {
		return
	}
	c.connectsSucceeded.Add(1)
}

// ── Command counters ─────────────────────────────────────────────────

// CommandExecuted records a command that ran on the remote host.
func (c *Collector) CommandExecuted() {
	if c == nil {
		return
	}
	c.commandsExecuted.Add(1)
}

// CommandRejected records a command stopped by the policy engine.
func (c *Collector) CommandRejected() {
	if c == nil {
		return
	}
	c.commandsRejected.Add(1)
}

// ExecFailed records a dispatched command that failed or timed out.
func (c *Collector) ExecFailed() {
	if c == nil {
		return
	}
	c.execFailures.Add(1)
}

// AuthDenied records a privileged operation refused by the gate.
func (c *Collector) AuthDenied() {
	if c == nil {
		return
	}
	c.authDenials.Add(1)
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError stores the most recent failure message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Uptime            time.Duration
	ConnectsAttempted int64
	ConnectsSucceeded int64
	CommandsExecuted  int64
	CommandsRejected  int64
	ExecFailures      int64
	AuthDenials       int64
	LastError         string
	LastErrorAt       time.Time
}

// Snapshot returns the current counter values.  A nil collector
// returns the zero Snapshot.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Uptime:            time.Since(c.startTime),
		ConnectsAttempted: c.connectsAttempted.Load(),
		ConnectsSucceeded: c.connectsSucceeded.Load(),
		CommandsExecuted:  c.commandsExecuted.Load(),
		CommandsRejected:  c.commandsRejected.Load(),
		ExecFailures:      c.execFailures.Load(),
		AuthDenials:       c.authDenials.Load(),
		LastError:         c.lastErrorMsg,
		LastErrorAt:       c.lastError,
	}
}

// String renders the snapshot for the status command.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uptime %s, connects %d/%d, commands %d run / %d rejected / %d failed, auth denials %d",
		s.Uptime.Round(time.Second), s.ConnectsSucceeded, s.ConnectsAttempted,
		s.CommandsExecuted, s.CommandsRejected, s.ExecFailures, s.AuthDenials)
	if s.LastError != "" {
		fmt.Fprintf(&b, ", last error: %s", s.LastError)
	}
	return b.String()
}

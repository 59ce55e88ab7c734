package remote

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	sgerr "shellgate/internal/errors"
	"shellgate/internal/metrics"
	"shellgate/internal/registry"
	"shellgate/util"
)

// Manager owns the process's single Session.
//
// Locking: mu serializes connect, execute, and disconnect.  Connect
// uses TryLock so an overlapping connect is rejected with ErrBusy
// instead of queueing behind a handshake already in flight — that is
// the Connecting guard.  Execute and Disconnect block until the lock
// is free.
//
// Timeout policy: an execution timeout closes only the offending exec
// channel; the client connection stays Connected for the next command.
// Only a dead client (a new channel cannot be opened) resets the
// manager to Disconnected.
type Manager struct {
	transport Transport
	logger    *util.Logger
	stats     *metrics.Collector

	connectTimeout time.Duration
	execTimeout    time.Duration

	mu    sync.Mutex
	state atomic.Int32
	sess  *Session
	conn  Conn
}

// NewManager creates a Manager in the Disconnected state.
func NewManager(t Transport, connectTimeout, execTimeout time.Duration,
	logger *util.Logger, stats *metrics.Collector) *Manager {
	return &Manager{
		transport:      t,
		logger:         logger,
		stats:          stats,
		connectTimeout: connectTimeout,
		execTimeout:    execTimeout,
	}
}

// State reports the current lifecycle state without blocking on the
// session lock.
func (m *Manager) State() State { return State(m.state.Load()) }

// Info returns a copy of the live session metadata, if any.
func (m *Manager) Info() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return Session{}, false
	}
	return *m.sess, true
}

// Connect replaces any existing session with a new one to the given
// record, closing the old transport first.  On failure the state is
// Disconnected and no transport handle remains.
func (m *Manager) Connect(ctx context.Context, rec registry.Record) (Session, error) {
	if !m.mu.TryLock() {
		return Session{}, sgerr.ErrBusy
	}
	defer m.mu.Unlock()

	m.closeLocked()
	m.state.Store(int32(Connecting))
	m.stats.ConnectAttempted()

	dialCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()

	start := time.Now()
	conn, err := m.transport.Dial(dialCtx, rec.Host, rec.Username, rec.Secret)
	elapsed := time.Since(start)
	if err != nil {
		m.state.Store(int32(Disconnected))
		cerr := &sgerr.ConnectionError{
			Kind:     ClassifyDial(err),
			Host:     rec.Host,
			Duration: elapsed,
			Err:      err,
		}
		m.logger.Error("connect %s@%s failed: %s after %s",
			rec.Username, rec.Host, cerr.Kind, elapsed.Round(time.Millisecond))
		m.stats.RecordError(cerr.Error())
		return Session{}, cerr
	}

	sess := &Session{
		ID:          uuid.New(),
		Record:      rec,
		ConnectedAt: time.Now(),
	}
	m.sess = sess
	m.conn = conn
	m.state.Store(int32(Connected))
	m.stats.ConnectSucceeded()
	m.logger.Info("connected to %s@%s in %s (session %s)",
		rec.Username, rec.Host, elapsed.Round(time.Millisecond), sess.ID)
	return *sess, nil
}

// Disconnect closes the live session.  Idempotent: disconnecting while
// already Disconnected is a no-op.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// closeLocked releases the transport handle.  Callers hold mu.
func (m *Manager) closeLocked() {
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Debug("closing transport: %v", err)
		}
		m.logger.Info("disconnected from %s (session %s)",
			m.sess.Record.Host, m.sess.ID)
	}
	m.conn = nil
	m.sess = nil
	m.state.Store(int32(Disconnected))
}

// Execute runs a command on the live session.  The command must have
// passed the policy engine already; the manager trusts the gateway's
// ordering and does not revalidate.
func (m *Manager) Execute(ctx context.Context, command string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return Result{}, &sgerr.ExecutionError{Kind: sgerr.NotConnected, Err: sgerr.ErrNotConnected}
	}
	host := m.sess.Record.Host

	execCtx, cancel := context.WithTimeout(ctx, m.execTimeout)
	defer cancel()

	start := time.Now()
	res, err := m.conn.Run(execCtx, command)
	elapsed := time.Since(start)
	if err == nil {
		m.stats.CommandExecuted()
		m.logger.Verbose("executed on %s in %s (exit %d)", host,
			elapsed.Round(time.Millisecond), res.ExitCode)
		return res, nil
	}

	m.stats.ExecFailed()
	kind := sgerr.RemoteFailure
	if errors.Is(err, context.DeadlineExceeded) {
		kind = sgerr.ExecTimeout
	}
	if errors.Is(err, errConnDead) {
		// The client itself is gone; drop the session so the next
		// execute reports NotConnected instead of failing the same way.
		m.closeLocked()
	}
	eerr := &sgerr.ExecutionError{Kind: kind, Host: host, Duration: elapsed, Err: err}
	m.logger.Error("execute on %s failed: %s after %s",
		host, kind, elapsed.Round(time.Millisecond))
	m.stats.RecordError(eerr.Error())
	return res, eerr
}

// Probe dials host with the given credentials and immediately closes
// the connection.  Used to verify a record before it is persisted; it
// never touches the live session or its lock.
func (m *Manager) Probe(ctx context.Context, host, username, secret string) error {
	dialCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()

	start := time.Now()
	conn, err := m.transport.Dial(dialCtx, host, username, secret)
	if err != nil {
		return &sgerr.ConnectionError{
			Kind:     ClassifyDial(err),
			Host:     host,
			Duration: time.Since(start),
			Err:      err,
		}
	}
	conn.Close()
	return nil
}

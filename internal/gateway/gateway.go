// Package gateway composes the policy engine, authorization gate,
// server registry, and connection manager into the operation surface
// the chat frontend calls.
//
// Control flow for every inbound request: authorization gate (for
// privileged operations) → registry lookup or connection manager →
// policy engine (for command execution) → remote call.  The gateway
// owns the ordering; the connection manager trusts it and does not
// revalidate commands.
package gateway

import (
	"context"

	"shellgate/internal/auth"
	"shellgate/internal/metrics"
	"shellgate/internal/policy"
	"shellgate/internal/registry"
	"shellgate/internal/remote"
	"shellgate/internal/shortcuts"
	"shellgate/util"
)

// Gateway is the facade over the execution core.
type Gateway struct {
	engine    *policy.Engine
	gate      *auth.Gate
	servers   *registry.Registry
	manager   *remote.Manager
	shortcuts *shortcuts.List
	logger    *util.Logger
	stats     *metrics.Collector
}

// New wires the components together.
func New(engine *policy.Engine, gate *auth.Gate, servers *registry.Registry,
	manager *remote.Manager, sc *shortcuts.List,
	logger *util.Logger, stats *metrics.Collector) *Gateway {
	return &Gateway{
		engine:    engine,
		gate:      gate,
		servers:   servers,
		manager:   manager,
		shortcuts: sc,
		logger:    logger,
		stats:     stats,
	}
}

func (g *Gateway) requireAdmin(callerID string) error {
	if err := g.gate.RequireAdmin(callerID); err != nil {
		g.stats.AuthDenied()
		g.logger.Info("denied privileged operation for caller %s", callerID)
		return err
	}
	return nil
}

// ── Server management (admin) ────────────────────────────────────────

// AddServer validates the fields, probes the credentials with a
// short-lived login, and persists the record.  A record that fails the
// probe is never saved.
func (g *Gateway) AddServer(ctx context.Context, callerID, host, username, secret string) (registry.Record, error) {
	if err := g.requireAdmin(callerID); err != nil {
		return registry.Record{}, err
	}
	if err := registry.ValidateFields(host, username, secret); err != nil {
		return registry.Record{}, err
	}
	if err := g.manager.Probe(ctx, host, username, secret); err != nil {
		return registry.Record{}, err
	}
	rec, err := g.servers.Add(host, username, secret, callerID)
	if err != nil {
		return registry.Record{}, err
	}
	g.logger.Info("server %d (%s@%s) added by %s", rec.Index, rec.Username, rec.Host, callerID)
	return rec, nil
}

// DeleteServer removes the record at the given 1-based index.
func (g *Gateway) DeleteServer(callerID string, index int) (registry.Record, error) {
	if err := g.requireAdmin(callerID); err != nil {
		return registry.Record{}, err
	}
	rec, err := g.servers.Remove(index)
	if err != nil {
		return registry.Record{}, err
	}
	g.logger.Info("server %d (%s) deleted by %s", index, rec.Host, callerID)
	return rec, nil
}

// ListServers returns all records.  Listing is not privileged.
func (g *Gateway) ListServers() ([]registry.Record, error) {
	return g.servers.List()
}

// ── Connection management (admin) ────────────────────────────────────

// Connect resolves the index and hands the record to the connection
// manager.  An unknown index fails with NotFound before the manager is
// invoked.
func (g *Gateway) Connect(ctx context.Context, callerID string, index int) (remote.Session, error) {
	if err := g.requireAdmin(callerID); err != nil {
		return remote.Session{}, err
	}
	rec, err := g.servers.Get(index)
	if err != nil {
		return remote.Session{}, err
	}
	return g.manager.Connect(ctx, rec)
}

// Disconnect closes the live session, if any.
func (g *Gateway) Disconnect(callerID string) error {
	if err := g.requireAdmin(callerID); err != nil {
		return err
	}
	g.manager.Disconnect()
	return nil
}

// ConnectionInfo reports the live session and state.
func (g *Gateway) ConnectionInfo() (remote.Session, remote.State) {
	sess, ok := g.manager.Info()
	if !ok {
		return remote.Session{}, g.manager.State()
	}
	return sess, g.manager.State()
}

// ── Admin management (admin) ─────────────────────────────────────────

// AddAdmin inserts a new admin identity.
func (g *Gateway) AddAdmin(callerID, newID string) error {
	if err := g.requireAdmin(callerID); err != nil {
		return err
	}
	if err := g.gate.Add(newID); err != nil {
		return err
	}
	g.logger.Info("admin %s added by %s", newID, callerID)
	return nil
}

// ── Default commands (any caller) ────────────────────────────────────

// Shortcuts returns the default-command list.
func (g *Gateway) Shortcuts() ([]string, error) { return g.shortcuts.All() }

// AddShortcut validates and appends a default command.
func (g *Gateway) AddShortcut(text string) (string, error) {
	cmd, err := g.shortcuts.Add(text)
	if err != nil {
		g.stats.CommandRejected()
		return "", err
	}
	return cmd, nil
}

// RemoveShortcut deletes the default command at the given index.
func (g *Gateway) RemoveShortcut(index int) (string, error) {
	return g.shortcuts.Remove(index)
}

// ── Execution (any caller while connected) ───────────────────────────

// Run validates raw through the policy engine and executes it on the
// live session.  Execution is deliberately not admin-gated: whoever
// can message the bot while it is connected may run commands, matching
// the reference behavior.
func (g *Gateway) Run(ctx context.Context, callerID, raw string) (remote.Result, error) {
	cmd, err := g.engine.Validate(raw)
	if err != nil {
		g.stats.CommandRejected()
		g.logger.Info("command from %s rejected: %v", callerID, err)
		return remote.Result{}, err
	}
	return g.manager.Execute(ctx, cmd)
}

// Stats returns the runtime counters.
func (g *Gateway) Stats() metrics.Snapshot { return g.stats.Snapshot() }

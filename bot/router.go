// Package bot is the thin chat glue between a chat frontend and the
// gateway core.
//
// The router speaks the original command surface (/add_server,
// /connect, free text while connected, …) and renders plain-text
// replies.  It knows nothing about any concrete chat platform; a
// frontend feeds it (callerID, text) pairs and sends back whatever
// string it returns.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"shellgate/internal/gateway"
	"shellgate/internal/remote"
	"shellgate/util"
)

// Router dispatches inbound messages to gateway operations.
type Router struct {
	gw     *gateway.Gateway
	logger *util.Logger
}

// New creates a Router over the gateway.
func New(gw *gateway.Gateway, logger *util.Logger) *Router {
	return &Router{gw: gw, logger: logger}
}

// Handle processes one inbound message and returns the reply text.
// Messages starting with "/" are commands; anything else is a raw
// shell command for the connected server.
func (r *Router) Handle(ctx context.Context, callerID, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !strings.HasPrefix(text, "/") {
		return r.execute(ctx, callerID, text)
	}

	cmd, args := splitCommand(text)
	r.logger.Debug("dispatch %s from %s", cmd, callerID)
	switch cmd {
	case "/start", "/help":
		return helpText
	case "/add_admin":
		return r.addAdmin(callerID, args)
	case "/add_server":
		return r.addServer(ctx, callerID, args)
	case "/del_server":
		return r.delServer(callerID, args)
	case "/servers_list":
		return r.serversList()
	case "/connect":
		return r.connect(ctx, callerID, args)
	case "/disconnect":
		return r.disconnect(callerID)
	case "/add_command":
		return r.addCommand(args)
	case "/remove_command":
		return r.removeCommand(args)
	case "/commands":
		return r.listCommands()
	case "/status":
		return r.status()
	default:
		return fmt.Sprintf("Unknown command %s. Use /help for the command list.", cmd)
	}
}

func splitCommand(text string) (cmd, args string) {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

const helpText = `SSH gateway commands:
/add_server [host] [username] [secret] - add a server (admin)
/del_server [number] - delete a server (admin)
/servers_list - list servers
/connect [number] - connect to a server (admin)
/disconnect - close the connection (admin)
/add_admin [id] - add an admin (admin)
/add_command [command] - save a default command
/remove_command [number] - remove a default command
/commands - list default commands
/status - connection state and counters
Any other text runs as a command on the connected server.`

// ── command handlers ─────────────────────────────────────────────────

func (r *Router) addAdmin(callerID, args string) string {
	if args == "" {
		return "Usage: /add_admin [id]"
	}
	if err := r.gw.AddAdmin(callerID, args); err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("New admin added: %s", args)
}

func (r *Router) addServer(ctx context.Context, callerID, args string) string {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return "Usage: /add_server [host] [username] [secret]"
	}
	rec, err := r.gw.AddServer(ctx, callerID, fields[0], fields[1], fields[2])
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Server %d added: %s@%s (credentials verified)",
		rec.Index, rec.Username, rec.Host)
}

func (r *Router) delServer(callerID, args string) string {
	idx, ok := parseIndex(args)
	if !ok {
		return "Usage: /del_server [number]"
	}
	rec, err := r.gw.DeleteServer(callerID, idx)
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Server %d deleted: %s@%s", idx, rec.Username, rec.Host)
}

func (r *Router) serversList() string {
	records, err := r.gw.ListServers()
	if err != nil {
		return renderError(err)
	}
	if len(records) == 0 {
		return "No servers found."
	}
	var b strings.Builder
	b.WriteString("All servers:\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "%d. %s@%s", rec.Index, rec.Username, rec.Host)
		if rec.AddedBy != "" {
			fmt.Fprintf(&b, " (added by %s", rec.AddedBy)
			if !rec.AddedAt.IsZero() {
				fmt.Fprintf(&b, " at %s", rec.AddedAt.Format("2006-01-02 15:04:05"))
			}
			b.WriteString(")")
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) connect(ctx context.Context, callerID, args string) string {
	idx, ok := parseIndex(args)
	if !ok {
		return "Usage: /connect [number]"
	}
	sess, err := r.gw.Connect(ctx, callerID, idx)
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Connected to %s@%s.", sess.Record.Username, sess.Record.Host)
}

func (r *Router) disconnect(callerID string) string {
	if err := r.gw.Disconnect(callerID); err != nil {
		return renderError(err)
	}
	return "Connection closed."
}

func (r *Router) addCommand(args string) string {
	if args == "" {
		return "Usage: /add_command [command]"
	}
	cmd, err := r.gw.AddShortcut(args)
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Command saved: %s", cmd)
}

func (r *Router) removeCommand(args string) string {
	idx, ok := parseIndex(args)
	if !ok {
		return "Usage: /remove_command [number]"
	}
	removed, err := r.gw.RemoveShortcut(idx)
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("Command removed: %s", removed)
}

func (r *Router) listCommands() string {
	cmds, err := r.gw.Shortcuts()
	if err != nil {
		return renderError(err)
	}
	if len(cmds) == 0 {
		return "No default commands saved."
	}
	var b strings.Builder
	b.WriteString("Default commands:\n")
	for i, cmd := range cmds {
		fmt.Fprintf(&b, "%d. %s\n", i+1, cmd)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) status() string {
	sess, state := r.gw.ConnectionInfo()
	var b strings.Builder
	if state == remote.Connected {
		fmt.Fprintf(&b, "Connected to %s@%s since %s.\n",
			sess.Record.Username, sess.Record.Host,
			sess.ConnectedAt.Format("15:04:05"))
	} else {
		fmt.Fprintf(&b, "State: %s.\n", state)
	}
	b.WriteString(r.gw.Stats().String())
	return b.String()
}

func (r *Router) execute(ctx context.Context, callerID, text string) string {
	res, err := r.gw.Run(ctx, callerID, text)
	if err != nil {
		return renderError(err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "$ %s\n", text)
	if res.Stdout != "" {
		b.WriteString(strings.TrimRight(res.Stdout, "\n"))
		b.WriteByte('\n')
	}
	if res.Stderr != "" {
		fmt.Fprintf(&b, "stderr:\n%s\n", strings.TrimRight(res.Stderr, "\n"))
	}
	if res.ExitCode != 0 {
		fmt.Fprintf(&b, "exit code %d\n", res.ExitCode)
	}
	if res.Stdout == "" && res.Stderr == "" && res.ExitCode == 0 {
		b.WriteString("(no output)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func parseIndex(args string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

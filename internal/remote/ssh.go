package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	sgerr "shellgate/internal/errors"
	"shellgate/util"
)

// errConnDead marks a failure that leaves the whole client unusable,
// as opposed to one command's channel failing.
var errConnDead = errors.New("ssh connection is unusable")

// SSHTransport dials hosts with password authentication.  Host keys
// are ignored by default, matching the original deployment; strict
// checking against a known_hosts file is opt-in.
type SSHTransport struct {
	Port           int    // 0 means 22
	StrictHostKey  bool
	KnownHostsPath string // "" means ~/.ssh/known_hosts
	Logger         *util.Logger
}

// Dial performs the TCP dial and SSH handshake.  The caller bounds the
// whole thing through ctx.
func (t *SSHTransport) Dial(ctx context.Context, host, username, secret string) (Conn, error) {
	hkCallback, err := t.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	port := t.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	cfg := &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{ssh.Password(secret)},
		HostKeyCallback: hkCallback,
	}
	if deadline, ok := ctx.Deadline(); ok {
		cfg.Timeout = time.Until(deadline)
	}

	t.Logger.Debug("dialing %s as %s", addr, username)

	// Context-aware TCP dial so the handshake bound covers the whole
	// connect, not just the SSH exchange.
	var dialer net.Dialer
	tcpConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, cfg)
	if err != nil {
		tcpConn.Close()
		return nil, err
	}

	return &sshClientConn{client: ssh.NewClient(sshConn, chans, reqs)}, nil
}

func (t *SSHTransport) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if !t.StrictHostKey {
		//nolint:gosec // operator opted out of host key checking
		return ssh.InsecureIgnoreHostKey(), nil
	}
	khFile := t.KnownHostsPath
	if khFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		khFile = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(khFile)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts from %s: %w", khFile, err)
	}
	return cb, nil
}

// ── live connection ──────────────────────────────────────────────────

type sshClientConn struct {
	client *ssh.Client
}

// Run executes one command on a fresh exec channel.  On timeout only
// that channel is closed; the client connection stays usable for the
// next command.
func (c *sshClientConn) Run(ctx context.Context, command string) (Result, error) {
	sess, err := c.client.NewSession()
	if err != nil {
		// Failing to open a channel means the client itself is gone.
		return Result{}, fmt.Errorf("%w: %v", errConnDead, err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- sess.Run(command) }()

	select {
	case <-ctx.Done():
		// Stop waiting and tear down this channel.  The remote
		// process may keep running; the timeout only frees us.
		sess.Close()
		return Result{}, ctx.Err()
	case err := <-done:
		res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err == nil {
			return res, nil
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is a result, not a transport failure.
			res.ExitCode = exitErr.ExitStatus()
			return res, nil
		}
		return res, err
	}
}

func (c *sshClientConn) Close() error { return c.client.Close() }

// ── error classification ─────────────────────────────────────────────

// ClassifyDial maps a handshake error onto the connection taxonomy.
func ClassifyDial(err error) sgerr.ConnectionKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return sgerr.ConnTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return sgerr.ConnTimeout
	}
	msg := err.Error()
	if strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "no supported methods remain") ||
		strings.Contains(msg, "permission denied") {
		return sgerr.AuthFailed
	}
	return sgerr.Unreachable
}

package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"shellgate/internal/auth"
	"shellgate/internal/gateway"
	"shellgate/internal/metrics"
	"shellgate/internal/policy"
	"shellgate/internal/registry"
	"shellgate/internal/remote"
	"shellgate/internal/shortcuts"
	"shellgate/internal/store"
	"shellgate/util"
)

type fakeConn struct{ out string }

func (c *fakeConn) Run(ctx context.Context, command string) (remote.Result, error) {
	return remote.Result{Stdout: c.out}, nil
}
func (c *fakeConn) Close() error { return nil }

type fakeTransport struct {
	mu  sync.Mutex
	out string
}

func (t *fakeTransport) Dial(ctx context.Context, host, username, secret string) (remote.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &fakeConn{out: t.out}, nil
}

const admin = "1001"

func newRouter(t *testing.T) (*Router, *fakeTransport) {
	t.Helper()
	s := store.NewMemStore()
	if err := s.PutAdmins([]string{admin}); err != nil {
		t.Fatal(err)
	}
	engine, err := policy.New(policy.Options{
		MaxLength:       4096,
		BlockedPatterns: []string{"rm -rf /"},
	})
	if err != nil {
		t.Fatal(err)
	}
	tr := &fakeTransport{out: "ok\n"}
	logger := util.NewLogger(0)
	stats := metrics.New()
	manager := remote.NewManager(tr, time.Second, time.Second, logger, stats)
	gw := gateway.New(engine, auth.New(s), registry.New(s), manager,
		shortcuts.New(s, engine), logger, stats)
	return New(gw, logger), tr
}

func handle(t *testing.T, r *Router, caller, text string) string {
	t.Helper()
	return r.Handle(context.Background(), caller, text)
}

func TestHelp(t *testing.T) {
	r, _ := newRouter(t)
	for _, cmd := range []string{"/start", "/help"} {
		if got := handle(t, r, "x", cmd); !strings.Contains(got, "/add_server") {
			t.Errorf("Handle(%s) = %q", cmd, got)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	r, _ := newRouter(t)
	got := handle(t, r, "x", "/frobnicate now")
	if !strings.Contains(got, "Unknown command /frobnicate") {
		t.Errorf("got %q", got)
	}
}

func TestServerLifecycleThroughChat(t *testing.T) {
	r, _ := newRouter(t)

	got := handle(t, r, admin, "/add_server 10.0.0.5 root hunter2")
	if !strings.Contains(got, "Server 1 added: root@10.0.0.5") {
		t.Fatalf("add: %q", got)
	}

	got = handle(t, r, admin, "/servers_list")
	if !strings.Contains(got, "1. root@10.0.0.5") || !strings.Contains(got, "added by "+admin) {
		t.Errorf("list: %q", got)
	}
	// The secret never appears in a listing.
	if strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked in listing: %q", got)
	}

	got = handle(t, r, admin, "/del_server 1")
	if !strings.Contains(got, "Server 1 deleted") {
		t.Errorf("delete: %q", got)
	}
	if got = handle(t, r, admin, "/servers_list"); got != "No servers found." {
		t.Errorf("after delete: %q", got)
	}
}

func TestNonAdminRefused(t *testing.T) {
	r, _ := newRouter(t)

	for _, cmd := range []string{
		"/add_server 10.0.0.5 root pw",
		"/del_server 1",
		"/connect 1",
		"/disconnect",
		"/add_admin 2002",
	} {
		got := handle(t, r, "stranger", cmd)
		if !strings.Contains(got, "admin access") {
			t.Errorf("Handle(%s) = %q, want admin refusal", cmd, got)
		}
	}
}

func TestConnectAndExecute(t *testing.T) {
	r, tr := newRouter(t)
	tr.out = "Linux gate 6.1.0\n"

	handle(t, r, admin, "/add_server 10.0.0.5 root pw")
	got := handle(t, r, admin, "/connect 1")
	if !strings.Contains(got, "Connected to root@10.0.0.5") {
		t.Fatalf("connect: %q", got)
	}

	// Free text runs on the server — for any caller, not only admins.
	got = handle(t, r, "anyone", "uname -a")
	if !strings.Contains(got, "$ uname -a") || !strings.Contains(got, "Linux gate 6.1.0") {
		t.Errorf("execute: %q", got)
	}

	got = handle(t, r, admin, "/status")
	if !strings.Contains(got, "Connected to root@10.0.0.5") {
		t.Errorf("status: %q", got)
	}

	got = handle(t, r, admin, "/disconnect")
	if got != "Connection closed." {
		t.Errorf("disconnect: %q", got)
	}
	got = handle(t, r, "anyone", "uname -a")
	if !strings.Contains(got, "not connected") {
		t.Errorf("execute while disconnected: %q", got)
	}
}

func TestExecuteRejections(t *testing.T) {
	r, _ := newRouter(t)
	handle(t, r, admin, "/add_server 10.0.0.5 root pw")
	handle(t, r, admin, "/connect 1")

	tests := []struct {
		text string
		want string
	}{
		{"rm -rf /", `blocked pattern "rm -rf /"`},
		{"ls; id", `chaining with ";"`},
		{"echo $(id)", `chaining with "$("`},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := handle(t, r, "anyone", tt.text)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Handle(%q) = %q, want contains %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestConnectErrors(t *testing.T) {
	r, _ := newRouter(t)

	got := handle(t, r, admin, "/connect 99")
	if !strings.Contains(got, "Server 99 doesn't exist") {
		t.Errorf("connect 99: %q", got)
	}
	got = handle(t, r, admin, "/connect abc")
	if !strings.Contains(got, "Usage:") {
		t.Errorf("connect abc: %q", got)
	}
}

func TestDefaultCommandsThroughChat(t *testing.T) {
	r, _ := newRouter(t)

	if got := handle(t, r, "anyone", "/commands"); got != "No default commands saved." {
		t.Errorf("empty list: %q", got)
	}

	got := handle(t, r, "anyone", "/add_command df -h")
	if !strings.Contains(got, "Command saved: df -h") {
		t.Errorf("add: %q", got)
	}

	// Shortcuts are validated like any command.
	got = handle(t, r, "anyone", "/add_command rm -rf /")
	if !strings.Contains(got, "blocked pattern") {
		t.Errorf("blocked add: %q", got)
	}

	got = handle(t, r, "anyone", "/commands")
	if !strings.Contains(got, "1. df -h") {
		t.Errorf("list: %q", got)
	}

	got = handle(t, r, "anyone", "/remove_command 1")
	if !strings.Contains(got, "Command removed: df -h") {
		t.Errorf("remove: %q", got)
	}
}

func TestEmptyMessageIgnored(t *testing.T) {
	r, _ := newRouter(t)
	if got := handle(t, r, "x", "   "); got != "" {
		t.Errorf("blank message reply = %q, want empty", got)
	}
}

// Package cmd wires up the CLI flags and runs the console frontend.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"shellgate/bot"
	"shellgate/config"
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

// version is overridable at link time:
//
//	go build -ldflags "-X shellgate/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the gateway with the console frontend.
func Execute(ctx context.Context, args []string) error {
	cfg := config.New()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("shellgate", flag.ContinueOnError)

	// ── storage ──────────────────────────────────────────────────
	fs.StringVarP(&cfg.DataDir, "data-dir", "d", cfg.DataDir, "Directory for record files")

	// ── remote execution ─────────────────────────────────────────
	var execSec, connSec int
	fs.IntVar(&execSec, "exec-timeout", 0, "Remote command timeout in seconds")
	fs.IntVar(&connSec, "connect-timeout", 0, "SSH handshake timeout in seconds")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── policy ───────────────────────────────────────────────────
	var blocked, allowed string
	fs.StringVar(&blocked, "blocked", "", "Extra blocked patterns (comma-separated)")
	fs.StringVar(&allowed, "allowed-prefixes", "", "Allowed command prefixes (comma-separated; empty disables)")
	fs.IntVar(&cfg.MaxCommandLength, "max-command-length", cfg.MaxCommandLength, "Maximum command length")

	// ── frontend ─────────────────────────────────────────────────
	var callerID, initAdmin string
	fs.StringVar(&callerID, "caller-id", "console", "Caller identity for this console session")
	fs.StringVar(&initAdmin, "init-admin", "", "Seed this identity into the admin set and exit")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("shellgate %s\n", version)
		return nil
	}

	if execSec > 0 {
		cfg.ExecTimeout = time.Duration(execSec) * time.Second
	}
	if connSec > 0 {
		cfg.ConnectTimeout = time.Duration(connSec) * time.Second
	}
	if blocked != "" {
		cfg.BlockedPatterns = append(cfg.BlockedPatterns, config.ParseRuleList(blocked)...)
	}
	if allowed != "" {
		cfg.AllowedPrefixes = config.ParseRuleList(allowed)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	st, err := store.NewFileStore(cfg.ServersPath(), cfg.AdminsPath(), cfg.CommandsPath())
	if err != nil {
		return err
	}

	gate := auth.New(st)
	if initAdmin != "" {
		if err := gate.Add(initAdmin); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
		fmt.Printf("Admin %s added to %s\n", initAdmin, cfg.AdminsPath())
		return nil
	}

	engine, err := policy.New(policy.Options{
		MaxLength:       cfg.MaxCommandLength,
		BlockedPatterns: cfg.BlockedPatterns,
		AllowedPrefixes: cfg.AllowedPrefixes,
	})
	if err != nil {
		return err
	}

	stats := metrics.New()
	transport := &remote.SSHTransport{
		Port:           config.DefaultSSHPort,
		StrictHostKey:  cfg.StrictHostKey,
		KnownHostsPath: cfg.KnownHostsPath,
		Logger:         logger.Scoped("ssh"),
	}
	manager := remote.NewManager(transport, cfg.ConnectTimeout, cfg.ExecTimeout,
		logger.Scoped("remote"), stats)
	defer manager.Disconnect()

	gw := gateway.New(engine, gate, registry.New(st), manager,
		shortcuts.New(st, engine), logger.Scoped("gateway"), stats)

	if admins, err := gate.List(); err == nil && len(admins) == 0 {
		logger.Warn("admin set is empty; run with --init-admin %s to grant yourself access", callerID)
	}

	router := bot.New(gw, logger)
	console := &Console{
		Router:   router,
		CallerID: callerID,
		Input:    os.Stdin,
		Output:   os.Stdout,
		Logger:   logger,
	}
	return console.Run(ctx)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `shellgate – remote-execution gateway v%s

Holds one shared SSH session and relays validated commands to it.
Type /help at the prompt for the command surface.

Usage:
  shellgate [options]
  shellgate --init-admin <id>     Grant an identity admin access

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  SSH_TIMEOUT                 Remote command timeout, seconds (default 10)
  SSH_CONNECTION_TIMEOUT      SSH handshake timeout, seconds (default 5)
  SHELLGATE_DATA_DIR          Record file directory
  SHELLGATE_BLOCKED           Extra blocked patterns, comma-separated
  SHELLGATE_ALLOWED_PREFIXES  Allowed command prefixes, comma-separated
`)
}

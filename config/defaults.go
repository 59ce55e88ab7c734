package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultDataDir is where record files live unless overridden.
	DefaultDataDir = "data"

	// ServersFileName is the CSV file holding one server per row.
	ServersFileName = "servers.csv"

	// AdminsFileName holds one admin identity per line.
	AdminsFileName = "admins.txt"

	// CommandsFileName holds one default command per line.
	CommandsFileName = "commands.txt"

	// DefaultExecTimeout bounds a single remote command.
	DefaultExecTimeout = 10 * time.Second

	// DefaultConnectTimeout bounds the SSH handshake.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultMaxCommandLength rejects pathologically long input while
	// leaving room for any realistic one-liner.
	DefaultMaxCommandLength = 4096

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22
)

// DefaultBlockedPatterns deny the classic foot-guns out of the box.
// Operators extend the list via SHELLGATE_BLOCKED.
var DefaultBlockedPatterns = []string{
	"rm -rf /",
	"mkfs",
	"dd if=",
	":(){",
	"shutdown",
	"reboot",
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		DataDir:          DefaultDataDir,
		ExecTimeout:      DefaultExecTimeout,
		ConnectTimeout:   DefaultConnectTimeout,
		MaxCommandLength: DefaultMaxCommandLength,
		BlockedPatterns:  append([]string(nil), DefaultBlockedPatterns...),
	}
}

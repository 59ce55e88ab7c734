// Package config defines the runtime configuration for shellgate and
// provides helpers for parsing policy rule lists.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config holds every tuneable for a single shellgate process.
type Config struct {
	// ── Storage ──────────────────────────────────────────────────────
	DataDir string // directory holding the three record files

	// ── Remote execution ─────────────────────────────────────────────
	ExecTimeout    time.Duration // bound on a single remote command
	ConnectTimeout time.Duration // bound on the SSH handshake
	StrictHostKey  bool          // verify host keys against known_hosts
	KnownHostsPath string        // custom known_hosts path ("" = default)

	// ── Command policy ───────────────────────────────────────────────
	MaxCommandLength int      // reject longer input
	BlockedPatterns  []string // deny rules; always win over the allowlist
	AllowedPrefixes  []string // empty means the allowlist is disabled

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
}

// ── Record file layout ───────────────────────────────────────────────
//
// File names match the layout the record store expects: one server per
// CSV row, one admin identity per line, one shortcut per line.

// ServersPath returns the path of the servers CSV file.
func (c *Config) ServersPath() string { return filepath.Join(c.DataDir, ServersFileName) }

// AdminsPath returns the path of the admins file.
func (c *Config) AdminsPath() string { return filepath.Join(c.DataDir, AdminsFileName) }

// CommandsPath returns the path of the default-commands file.
func (c *Config) CommandsPath() string { return filepath.Join(c.DataDir, CommandsFileName) }

// ── Rule-list parser ─────────────────────────────────────────────────

// ParseRuleList splits a comma-separated rule list, trimming blanks.
// Used for SHELLGATE_BLOCKED and SHELLGATE_ALLOWED_PREFIXES.
func ParseRuleList(spec string) []string {
	if spec == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.ExecTimeout <= 0 {
		return fmt.Errorf("exec timeout must be positive, got %s", c.ExecTimeout)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive, got %s", c.ConnectTimeout)
	}
	if c.MaxCommandLength <= 0 {
		return fmt.Errorf("max command length must be positive, got %d", c.MaxCommandLength)
	}
	if c.KnownHostsPath != "" && !c.StrictHostKey {
		return fmt.Errorf("known-hosts path set without strict host key checking")
	}
	return nil
}

package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// SSH_TIMEOUT and SSH_CONNECTION_TIMEOUT keep their historical names
// (integer seconds); everything else uses the SHELLGATE_ prefix.
// Boolean values accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SHELLGATE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := envInt("SSH_TIMEOUT"); v > 0 {
		cfg.ExecTimeout = secondsDuration(v)
	}
	if v := envInt("SSH_CONNECTION_TIMEOUT"); v > 0 {
		cfg.ConnectTimeout = secondsDuration(v)
	}
	if envBool("SHELLGATE_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("SHELLGATE_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Policy
	if v := envInt("SHELLGATE_MAX_COMMAND_LENGTH"); v > 0 {
		cfg.MaxCommandLength = v
	}
	if v := os.Getenv("SHELLGATE_BLOCKED"); v != "" {
		cfg.BlockedPatterns = append(cfg.BlockedPatterns, ParseRuleList(v)...)
	}
	if v := os.Getenv("SHELLGATE_ALLOWED_PREFIXES"); v != "" {
		cfg.AllowedPrefixes = ParseRuleList(v)
	}

	// Output
	if v := envInt("SHELLGATE_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}

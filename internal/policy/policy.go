// Package policy decides whether a raw command string may be forwarded
// to the remote shell.
//
// Validation is an ordered list of hard gates; the first failing gate
// wins and later gates are never consulted.  The engine never rewrites
// a command beyond trimming trailing whitespace — it accepts or
// rejects, nothing else.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	sgerr "shellgate/internal/errors"
)

// Chaining metacharacters rejected by gate 3.  Two-character sequences
// are listed before their one-character prefixes so the reported
// detail names what the operator actually typed.
var chainingTokens = []string{"&&", "||", ";", "|", "`", "$("}

// Rule prefixes selecting the blocklist match mode.  A rule without a
// prefix is matched as a case-insensitive substring, which is what
// operators writing "rm -rf /" expect.
const (
	rulePrefixExact  = "exact:"
	rulePrefixPrefix = "prefix:"
	rulePrefixRegexp = "re:"
)

// Options configures an Engine.  The zero value is a permissive engine
// with only the structural gates (length, control characters,
// chaining) active.
type Options struct {
	MaxLength       int      // 0 means no length gate
	BlockedPatterns []string // deny rules; always win over the allowlist
	AllowedPrefixes []string // empty disables the allowlist gate

	// AllowChainingFor lists exact commands exempt from the chaining
	// gate.  Deployments that need a specific pipeline whitelist it
	// here; everything else stays denied.
	AllowChainingFor []string
}

// blockRule is one compiled blocklist entry.
type blockRule struct {
	raw   string // operator-visible form, reported on rejection
	match func(cmd string) bool
}

// Engine evaluates commands against an immutable rule set.  Safe for
// concurrent use; all state is fixed at construction.
type Engine struct {
	maxLength     int
	blocked       []blockRule
	allowPrefixes []string
	chainingOK    map[string]bool
}

// New compiles the options into an Engine.  Invalid regexp rules fail
// construction rather than being silently skipped.
func New(opts Options) (*Engine, error) {
	e := &Engine{
		maxLength:     opts.MaxLength,
		allowPrefixes: append([]string(nil), opts.AllowedPrefixes...),
		chainingOK:    make(map[string]bool, len(opts.AllowChainingFor)),
	}
	for _, cmd := range opts.AllowChainingFor {
		e.chainingOK[cmd] = true
	}
	for _, raw := range opts.BlockedPatterns {
		rule, err := compileRule(raw)
		if err != nil {
			return nil, err
		}
		e.blocked = append(e.blocked, rule)
	}
	return e, nil
}

func compileRule(raw string) (blockRule, error) {
	switch {
	case strings.HasPrefix(raw, rulePrefixRegexp):
		re, err := regexp.Compile(strings.TrimPrefix(raw, rulePrefixRegexp))
		if err != nil {
			return blockRule{}, fmt.Errorf("blocklist rule %q: %w", raw, err)
		}
		return blockRule{raw: raw, match: re.MatchString}, nil

	case strings.HasPrefix(raw, rulePrefixExact):
		want := strings.TrimPrefix(raw, rulePrefixExact)
		return blockRule{raw: raw, match: func(cmd string) bool { return cmd == want }}, nil

	case strings.HasPrefix(raw, rulePrefixPrefix):
		want := strings.TrimPrefix(raw, rulePrefixPrefix)
		return blockRule{raw: raw, match: func(cmd string) bool {
			return strings.HasPrefix(cmd, want)
		}}, nil

	default:
		lower := strings.ToLower(raw)
		return blockRule{raw: raw, match: func(cmd string) bool {
			return strings.Contains(strings.ToLower(cmd), lower)
		}}, nil
	}
}

// Validate runs the ordered gates over raw and returns the command as
// it will be sent to the remote shell: byte-identical to the input
// apart from trimmed trailing whitespace.
//
// Gate order: empty/length → control characters → chaining →
// blocklist → allowlist.  A blocklist hit is never overridden by an
// allow rule.
func (e *Engine) Validate(raw string) (string, error) {
	// Gate 1: empty and length.
	cmd := strings.TrimRight(raw, " \t\r\n")
	if cmd == "" {
		return "", sgerr.Rejected(sgerr.Empty, "")
	}
	if e.maxLength > 0 && len(cmd) > e.maxLength {
		return "", sgerr.Rejected(sgerr.TooLong,
			fmt.Sprintf("%d bytes, limit %d", len(cmd), e.maxLength))
	}

	// Gate 2: interior control characters.  Stripping them would
	// change what the operator reviewed, so reject instead.
	if i := strings.IndexFunc(cmd, isControl); i >= 0 {
		return "", sgerr.Rejected(sgerr.ControlCharacters,
			fmt.Sprintf("byte 0x%02x at offset %d", cmd[i], i))
	}

	// Gate 3: chaining metacharacters.
	if !e.chainingOK[cmd] {
		for _, tok := range chainingTokens {
			if strings.Contains(cmd, tok) {
				return "", sgerr.Rejected(sgerr.ChainingDetected, tok)
			}
		}
	}

	// Gate 4: blocklist.  Deny always wins.
	for _, rule := range e.blocked {
		if rule.match(cmd) {
			return "", sgerr.Rejected(sgerr.Blocked, rule.raw)
		}
	}

	// Gate 5: allowlist, only when configured.
	if len(e.allowPrefixes) > 0 {
		first := strings.ToLower(firstWord(cmd))
		allowed := false
		for _, p := range e.allowPrefixes {
			if strings.HasPrefix(first, strings.ToLower(p)) {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", sgerr.Rejected(sgerr.NotAllowlisted, firstWord(cmd))
		}
	}

	return cmd, nil
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func firstWord(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

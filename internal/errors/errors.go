// Package errors provides the error taxonomy for shellgate.
//
// Every failure in the gateway core is classifiable into one named kind:
// command validation, authorization, connection, execution, or lookup.
// Structured types carry enough context (host, duration, index) for the
// logs without leaking transport internals into chat replies.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrUnauthorized = errors.New("caller is not an admin")
	ErrNotConnected = errors.New("not connected to any server")
	ErrBusy         = errors.New("another connection attempt is in progress")
)

// ── Validation ───────────────────────────────────────────────────────

// ValidationKind names the policy or registry gate that rejected input.
type ValidationKind string

const (
	Empty             ValidationKind = "empty"
	TooLong           ValidationKind = "too_long"
	ControlCharacters ValidationKind = "control_characters"
	ChainingDetected  ValidationKind = "chaining_detected"
	Blocked           ValidationKind = "blocked"
	NotAllowlisted    ValidationKind = "not_allowlisted"
	InvalidHost       ValidationKind = "invalid_host"
	MissingField      ValidationKind = "missing_field"
)

// ValidationError reports input rejected by the policy engine or the
// server registry. Detail is safe to show to the caller.
type ValidationError struct {
	Kind   ValidationKind
	Detail string // e.g. the metacharacter or blocked pattern that matched
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("validation: %s", e.Kind)
	}
	return fmt.Sprintf("validation: %s: %s", e.Kind, e.Detail)
}

// Rejected creates a ValidationError.
func Rejected(kind ValidationKind, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Detail: detail}
}

// IsValidation reports whether err is a ValidationError of the given
// kind, returning the typed error when it is.
func IsValidation(err error, kind ValidationKind) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Kind == kind {
		return ve, true
	}
	return nil, false
}

// ── Connection ───────────────────────────────────────────────────────

// ConnectionKind classifies why an SSH handshake failed.
type ConnectionKind string

const (
	Unreachable ConnectionKind = "unreachable"
	AuthFailed  ConnectionKind = "auth_failed"
	ConnTimeout ConnectionKind = "timeout"
)

// ConnectionError reports a failed connect. Err holds the transport
// detail for the log; chat replies show only the kind.
type ConnectionError struct {
	Kind     ConnectionKind
	Host     string
	Duration time.Duration
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %s after %s: %v",
		e.Host, e.Kind, e.Duration.Round(time.Millisecond), e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ── Execution ────────────────────────────────────────────────────────

// ExecutionKind classifies why a remote command failed.
type ExecutionKind string

const (
	NotConnected  ExecutionKind = "not_connected"
	ExecTimeout   ExecutionKind = "timeout"
	RemoteFailure ExecutionKind = "remote_failure"
)

// ExecutionError reports a failed remote command.
type ExecutionError struct {
	Kind     ExecutionKind
	Host     string
	Duration time.Duration
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute on %s: %s after %s: %v",
		e.Host, e.Kind, e.Duration.Round(time.Millisecond), e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ── Lookup ───────────────────────────────────────────────────────────

// NotFoundError reports a 1-based index that resolves to no record.
type NotFoundError struct {
	What  string // "server" or "command"
	Index int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.What, e.Index)
}

// ── Classification helpers ───────────────────────────────────────────

// ConnectionKindOf extracts the kind from a ConnectionError, or "".
func ConnectionKindOf(err error) ConnectionKind {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// ExecutionKindOf extracts the kind from an ExecutionError, or "".
func ExecutionKindOf(err error) ExecutionKind {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These let callers use shellgate/internal/errors as a drop-in for the
// standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

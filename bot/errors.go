package bot

import (
	"fmt"

	sgerr "shellgate/internal/errors"
)

// renderError turns a core error into a caller-facing reply.
// Validation, authorization, and not-found errors are precise;
// connection and execution failures show only the error kind, never
// raw transport detail.
func renderError(err error) string {
	switch {
	case sgerr.Is(err, sgerr.ErrUnauthorized):
		return "You need admin access for that."
	case sgerr.Is(err, sgerr.ErrBusy):
		return "Another connection attempt is in progress. Try again shortly."
	}

	var ve *sgerr.ValidationError
	if sgerr.As(err, &ve) {
		return renderValidation(ve)
	}

	var nf *sgerr.NotFoundError
	if sgerr.As(err, &nf) {
		return fmt.Sprintf("%s %d doesn't exist. Check the list and try again.",
			title(nf.What), nf.Index)
	}

	var ce *sgerr.ConnectionError
	if sgerr.As(err, &ce) {
		switch ce.Kind {
		case sgerr.AuthFailed:
			return "Couldn't connect: authentication failed. Check username and secret."
		case sgerr.ConnTimeout:
			return "Couldn't connect: the host didn't answer in time."
		default:
			return "Couldn't connect: host unreachable."
		}
	}

	var ee *sgerr.ExecutionError
	if sgerr.As(err, &ee) {
		switch ee.Kind {
		case sgerr.NotConnected:
			return "I'm not connected to any server. Use /connect first."
		case sgerr.ExecTimeout:
			return "Command timed out. The remote process may still be running."
		default:
			return "Command failed on the remote host."
		}
	}

	return "Something went wrong. Please try again."
}

func renderValidation(ve *sgerr.ValidationError) string {
	switch ve.Kind {
	case sgerr.Empty:
		return "Command rejected: empty input."
	case sgerr.TooLong:
		return "Command rejected: too long."
	case sgerr.ControlCharacters:
		return "Command rejected: contains control characters."
	case sgerr.ChainingDetected:
		return fmt.Sprintf("Command rejected: chaining with %q is not allowed.", ve.Detail)
	case sgerr.Blocked:
		return fmt.Sprintf("Command rejected: matches blocked pattern %q.", ve.Detail)
	case sgerr.NotAllowlisted:
		return "Command rejected: not on the allowed command list."
	case sgerr.InvalidHost:
		return fmt.Sprintf("Invalid host %q.", ve.Detail)
	case sgerr.MissingField:
		return "Host, username, and secret are all required."
	default:
		return fmt.Sprintf("Input rejected: %s.", ve.Kind)
	}
}

func title(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

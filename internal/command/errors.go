package command

import (
	"errors"
	"fmt"

	"github.com/allbin/serialterm/internal/session"
)

// Kind classifies a command failure for the front-end.
type Kind string

const (
	KindOpenFailed     Kind = "OpenFailed"
	KindNotRunning     Kind = "NotRunning"
	KindAlreadyRunning Kind = "AlreadyRunning"
	KindOverflow       Kind = "Overflow"
	KindWriteFailed    Kind = "WriteFailed"
	KindInvalidPattern Kind = "InvalidPattern"
	KindSinkFailed     Kind = "SinkFailed"
	KindInternal       Kind = "Internal"
)

// Error is the only error type returned by Handler. Detail is empty unless
// the handler was built with WithErrorDetail(true); the wrapped error is
// always available through errors.Unwrap for logging.
type Error struct {
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail,omitempty"`

	err error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.err }

func classify(err error) Kind {
	switch {
	case errors.Is(err, session.ErrOpenFailed):
		return KindOpenFailed
	case errors.Is(err, session.ErrNotRunning):
		return KindNotRunning
	case errors.Is(err, session.ErrAlreadyRunning):
		return KindAlreadyRunning
	case errors.Is(err, session.ErrOverflow):
		return KindOverflow
	case errors.Is(err, session.ErrWriteFailed):
		return KindWriteFailed
	case errors.Is(err, session.ErrInvalidPattern):
		return KindInvalidPattern
	case errors.Is(err, session.ErrSinkFailed):
		return KindSinkFailed
	default:
		return KindInternal
	}
}

// IsKind reports whether err is a command Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var cmdErr *Error
	return errors.As(err, &cmdErr) && cmdErr.Kind == kind
}

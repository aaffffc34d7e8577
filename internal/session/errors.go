package session

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind. The structured errors below match
// them through errors.Is while keeping the underlying cause reachable.
var (
	ErrOpenFailed     = errors.New("failed to open port")
	ErrNotRunning     = errors.New("no session is running")
	ErrAlreadyRunning = errors.New("a session is already running")
	ErrOverflow       = errors.New("buffer size exceeds usage range")
	ErrWriteFailed    = errors.New("failed to write buffer")
	ErrInvalidPattern = errors.New("invalid search pattern")
	ErrSinkFailed     = errors.New("streaming sink failed")
)

// OpenError reports a transport failure while acquiring the port.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Port, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

func (e *OpenError) Is(target error) bool { return target == ErrOpenFailed }

// WriteError reports a storage failure while saving the read accumulator.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWriteFailed }

// PatternError reports a search pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

func (e *PatternError) Is(target error) bool { return target == ErrInvalidPattern }

// SinkError reports the sink failure that tore down a session loop.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink: %v", e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

func (e *SinkError) Is(target error) bool { return target == ErrSinkFailed }

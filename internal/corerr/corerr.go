// Package corerr provides the core's status-code taxonomy and a
// structured error type that wraps it with an operation name and an
// underlying cause: a struct with Op/Err fields and an Unwrap method
// so errors.Is/As keep working through the wrapper.
package corerr

import "fmt"

// Status is a stable, user-visible status code, independent of any
// particular underlying error's message text.
type Status int

const (
	Success Status = iota
	OutOfMemory
	InvalidArgument
	Range
	NotFound
	FileNotFound
	FileRead
	FileWrite
	FilePermission
	BufferInvalid
	LineInvalid
	Syntax
	CommandUnknown
	TerminalInit
	QueueFull
	Timeout
	Duplicate
)

// Error returns the stable short string for the status, making Status
// itself usable as an error value when no further context is needed.
func (s Status) Error() string {
	switch s {
	case Success:
		return "success"
	case OutOfMemory:
		return "out of memory"
	case InvalidArgument:
		return "invalid argument"
	case Range:
		return "range"
	case NotFound:
		return "not found"
	case FileNotFound:
		return "file not found"
	case FileRead:
		return "file read error"
	case FileWrite:
		return "file write error"
	case FilePermission:
		return "permission denied"
	case BufferInvalid:
		return "buffer invalid"
	case LineInvalid:
		return "line invalid"
	case Syntax:
		return "syntax error"
	case CommandUnknown:
		return "unknown command"
	case TerminalInit:
		return "terminal initialization failed"
	case QueueFull:
		return "queue full"
	case Timeout:
		return "timeout"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown status"
	}
}

// Error wraps a Status with the operation that produced it and an
// optional underlying cause.
type Error struct {
	Status Status
	Op     string
	Err    error
}

// New returns an Error with no underlying cause.
func New(status Status, op string) *Error {
	return &Error{Status: status, Op: op}
}

// Wrap returns an Error wrapping err with the given status and op.
func Wrap(status Status, op string, err error) *Error {
	return &Error{Status: status, Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Status.Error(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status.Error())
}

// Unwrap returns the underlying cause, so errors.Is/As see through the
// wrapper to the original error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same Status, so errors.Is(err,
// corerr.Range) works directly against a wrapped *Error.
func (e *Error) Is(target error) bool {
	if s, ok := target.(Status); ok {
		return e.Status == s
	}
	return false
}

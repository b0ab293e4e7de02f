package archiver

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Each kind maps to a distinct process
// exit status at the command line boundary.
type Kind int

const (
	KindIOFailure Kind = iota + 1
	KindInvalidArgument
	KindMissingConfiguration
	KindTargetExists
	KindDirectoryUnusable
	KindInsertConflict
	KindUpdateConflict
)

// ExitCode returns the process exit status for the kind.
func (k Kind) ExitCode() int {
	return int(k)
}

func (k Kind) String() string {
	switch k {
	case KindIOFailure:
		return "io failure"
	case KindInvalidArgument:
		return "invalid argument"
	case KindMissingConfiguration:
		return "missing configuration"
	case KindTargetExists:
		return "target exists"
	case KindDirectoryUnusable:
		return "directory unusable"
	case KindInsertConflict:
		return "insert conflict"
	case KindUpdateConflict:
		return "update conflict"
	}
	return "unknown"
}

// Error is a classified pipeline error. All fallible stages return an
// *Error so the caller can map the failure to an exit status exactly once,
// at the outermost boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrap attaches a kind to an underlying error.
func wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindIOFailure
// for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOFailure
}

// ExitCode returns the exit status for an error, or 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}

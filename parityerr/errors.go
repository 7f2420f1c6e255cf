// Package parityerr defines the failure taxonomy for refdoc-parity.
//
// Every error surfaced by the pipeline or the CLIs maps to exactly one
// FailureClass, which determines the process exit code. A content mismatch is
// a reportable outcome rather than a crash, but it shares the taxonomy so the
// verifier's exit status is derived the same way as every other outcome.
package parityerr

import (
	"errors"
	"fmt"
)

// FailureClass is a stable failure category.
type FailureClass string

const (
	ContentMismatch FailureClass = "CONTENT_MISMATCH"
	CLIUsage        FailureClass = "CLI_USAGE"
	ConfigInvalid   FailureClass = "CONFIG_INVALID"
	SnapshotInvalid FailureClass = "SNAPSHOT_INVALID"
	CommandFailed   FailureClass = "COMMAND_FAILED"
	InternalIO      FailureClass = "INTERNAL_IO"
	InternalError   FailureClass = "INTERNAL_ERROR"
)

// ExitCode returns the process exit code for this failure class.
func (fc FailureClass) ExitCode() int {
	switch fc {
	case ContentMismatch:
		return 1
	case CommandFailed:
		return 3
	case InternalIO, InternalError:
		return 10
	default:
		return 2
	}
}

// Error is the structured error type for all refdoc-parity failures.
type Error struct {
	Class FailureClass
	// Stage names the pipeline stage that failed ("fetch", "format",
	// "actual", "export", ...). Empty when not stage-specific.
	Stage   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var msg string
	if e.Stage != "" {
		msg = fmt.Sprintf("parity: %s in %s: %s", e.Class, e.Stage, e.Message)
	} else {
		msg = fmt.Sprintf("parity: %s: %s", e.Class, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given class and message.
func New(class FailureClass, stage, message string) *Error {
	return &Error{Class: class, Stage: stage, Message: message}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(class FailureClass, stage, message string, cause error) *Error {
	return &Error{Class: class, Stage: stage, Message: message, Cause: cause}
}

// ClassOf returns the class of the first *Error in err's chain, or
// InternalError when there is none.
func ClassOf(err error) FailureClass {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Class
	}
	return InternalError
}

// Package apperr defines the error kinds of the homebook core.
//
// Repositories return Driver and NotFound; services wrap them into
// Service errors where a user-facing message is warranted. Config
// covers missing or malformed settings. The transaction runner rolls
// back on any of them; the undo stack is never touched on failure.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorises an error.
type Kind string

const (
	// KindConfig is a missing or malformed settings problem.
	KindConfig Kind = "CONFIG"

	// KindDriver is a propagated database-driver failure.
	KindDriver Kind = "DRIVER"

	// KindNotFound means an operation that expected exactly one
	// affected row touched zero.
	KindNotFound Kind = "NOT_FOUND"

	// KindService is a domain violation carrying human-readable,
	// localised messages.
	KindService Kind = "SERVICE"
)

// Error is the uniform error value of the core.
type Error struct {
	Kind Kind

	// Messages is the localised, user-facing message list for
	// Service errors. Other kinds leave it empty.
	Messages []string

	// Op names the failing operation for diagnostics.
	Op string

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case len(e.Messages) > 0 && e.Op != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Messages[0])
	case len(e.Messages) > 0:
		return fmt.Sprintf("%s: %s", e.Kind, e.Messages[0])
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a NotFound error for an operation.
func NotFound(op string) *Error {
	return &Error{Kind: KindNotFound, Op: op}
}

// Driver wraps a database-driver failure.
func Driver(op string, err error) *Error {
	return &Error{Kind: KindDriver, Op: op, Err: err}
}

// Config wraps a settings problem.
func Config(op string, err error) *Error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

// Service builds a domain violation with user-facing messages.
func Service(op string, messages ...string) *Error {
	return &Error{Kind: KindService, Op: op, Messages: messages}
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsService reports whether err is a Service error.
func IsService(err error) bool { return IsKind(err, KindService) }

// UserMessages extracts the localised message list, or nil when err
// carries none.
func UserMessages(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Messages
	}
	return nil
}

package types

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so callers can map them to a
// transport status without parsing messages.
type ErrorKind string

const (
	// KindBadInput marks validation failures caused by the caller's request.
	KindBadInput ErrorKind = "bad_input"

	// KindNotFound marks lookups of users or tickets that do not exist.
	KindNotFound ErrorKind = "not_found"

	// KindServerError marks unexpected persistence or infrastructure failures.
	// The underlying cause is logged, never surfaced.
	KindServerError ErrorKind = "server_error"

	// KindCancelled marks requests aborted by the caller before commit.
	KindCancelled ErrorKind = "cancelled"
)

// Error is the typed error returned by the betting, account and offer
// engines. Validation failures carry a human-readable message; server
// errors carry an opaque message and keep the cause for unwrapping.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewBadInput creates a BadInput validation error.
func NewBadInput(format string, args ...any) *Error {
	return &Error{Kind: KindBadInput, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a NotFound error.
func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewServerError wraps an infrastructure failure without leaking details.
func NewServerError(cause error) *Error {
	return &Error{Kind: KindServerError, Message: "internal server error", cause: cause}
}

// NewCancelled wraps a context cancellation or deadline error.
func NewCancelled(cause error) *Error {
	return &Error{Kind: KindCancelled, Message: "request cancelled", cause: cause}
}

// KindOf extracts the error kind. Plain context errors classify as
// Cancelled; anything else unrecognised classifies as ServerError.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindServerError
}

package vdberr

import (
	"fmt"
)

// Error is the structured error type returned by every core package.
// It carries enough context for a transport adapter to pick a status
// code and for a caller to decide whether retrying makes sense.
type Error struct {
	// Code is the unique error code (e.g., "ERR_301_VERSION_STALE").
	Code string

	// Kind is the transport-agnostic error kind from spec.md §7.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// Field is the originating field path, set only for validation errors.
	Field string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates whether retrying the same operation could help.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code, so that
// errors.Is(err, vdberr.New(vdberr.CodeVersionStale, "")) works regardless
// of message or cause.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code and message. Kind and
// retryability are derived from the code.
func New(code string, message string) *Error {
	k := kindFromCode(code)
	return &Error{
		Code:      code,
		Kind:      k,
		Message:   message,
		Retryable: retryableKind(k),
	}
}

// Wrap creates an Error from an existing error, preserving it as Cause.
func Wrap(code string, cause error) *Error {
	if cause == nil {
		return nil
	}
	e := New(code, cause.Error())
	e.Cause = cause
	return e
}

// NotFound builds a not_found error for the given entity code.
func NotFound(code, message string) *Error {
	return New(code, message)
}

// Validation builds a validation error with the offending field path
// preserved, per spec.md §7's "preserve the originating field path"
// propagation rule.
func Validation(code, field, message string) *Error {
	e := New(code, message)
	e.Field = field
	return e
}

// Conflict builds a conflict error (stale CAS version).
func Conflict(message string) *Error {
	return New(CodeVersionStale, message)
}

// Busy builds a busy error (lock acquisition timeout).
func Busy(message string) *Error {
	return New(CodeLockTimeout, message)
}

// Internal builds an internal error, wrapping cause when present.
// Internal errors are never retried per spec.md §7.
func Internal(message string, cause error) *Error {
	e := New(CodeInternal, message)
	e.Cause = cause
	return e
}

// IsRetryable reports whether err is a retryable *Error (conflict or busy).
func IsRetryable(err error) bool {
	if ve, ok := err.(*Error); ok {
		return ve.Retryable
	}
	return false
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, k Kind) bool {
	ve, ok := err.(*Error)
	return ok && ve.Kind == k
}

// GetCode extracts the error code from a *Error, or "" if err isn't one.
func GetCode(err error) string {
	if ve, ok := err.(*Error); ok {
		return ve.Code
	}
	return ""
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so the exit code says what
// kind of failure occurred without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation: the caller provided invalid input (bad flags,
	// missing arguments, an unparseable location). Fix and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced resource does not exist, such as a
	// config file or saved session.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: the caller lacks permission, such as an
	// unwritable export directory.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryTransient: a temporary failure (timeout, dropped
	// connection). Retrying may succeed.
	CategoryTransient ErrorCategory = "transient"

	// CategoryUnavailable: the record service answered with an error.
	CategoryUnavailable ErrorCategory = "unavailable"

	// CategoryInternal: an unexpected failure. Report rather than retry.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. It wraps the
// underlying error so errors.Is and errors.As see the full chain, and
// carries an optional hint printed after the message.
type ToolError struct {
	Category ErrorCategory
	Err      error
	Hint     string
}

// Error returns the message followed by the hint, if any, separated by
// a blank line.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint attaches a remediation hint and returns the receiver.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Unavailable creates an error for a failure reported by the record service.
func Unavailable(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryUnavailable, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

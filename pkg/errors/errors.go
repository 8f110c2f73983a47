// Package errors provides structured error types for scenesync.
//
// The reconciliation core never fails fatally: every problem it detects is
// reported as a coded [Error], logged, and degraded to "no-op this update,
// try again next update". The codes make that policy inspectable:
//   - CONFIGURATION: malformed or inconsistent props
//   - MISSING_CONTEXT: a context channel read before it was established
//   - UNSUPPORTED_CAPABILITY: a pipeline stage cannot perform an operation
//   - DATA_UNAVAILABLE: pipeline output read before any data flowed
//
// Tooling (scene files, replay, CLI) additionally uses INVALID_INPUT,
// NOT_FOUND and INTERNAL_ERROR.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "component count %d does not divide %d values", n, len(v))
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // keep the previous buffer and retry on the next update
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode props for %s", kind)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Reconciliation core
	ErrCodeConfiguration   Code = "CONFIGURATION"
	ErrCodeMissingContext  Code = "MISSING_CONTEXT"
	ErrCodeUnsupported     Code = "UNSUPPORTED_CAPABILITY"
	ErrCodeDataUnavailable Code = "DATA_UNAVAILABLE"

	// Tooling
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Field   string // Offending prop or channel name (optional)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithField returns a copy of e that names the offending field.
func (e *Error) WithField(field string) *Error {
	cp := *e
	cp.Field = field
	return &cp
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Configuration is shorthand for a CONFIGURATION error naming field.
func Configuration(field, format string, args ...any) *Error {
	return New(ErrCodeConfiguration, format, args...).WithField(field)
}

// MissingContext reports that channel has no establishing ancestor yet.
func MissingContext(channel string) *Error {
	return New(ErrCodeMissingContext, "context channel not available").WithField(channel)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetField extracts the offending field name from an error, if available.
func GetField(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

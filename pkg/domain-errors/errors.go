// Package domainerrors provides coded errors for the service layer.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate them into coded errors here so handlers can map codes
// to HTTP status and user-facing messages without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and logging.
type Code string

const (
	// Request validation and ambient codes.
	CodeBadRequest Code = "bad_request"
	CodeInternal   Code = "internal_error"
	CodeTimeout    Code = "timeout"

	// Submission pipeline codes, in precondition order.
	CodeRateLimited   Code = "rate_limited"
	CodeUnauthorized  Code = "auth_required"
	CodeQuotaExceeded Code = "quota_exceeded"
	CodeDuplicate     Code = "duplicate_detected"

	// Record access codes.
	CodeNotFound     Code = "not_found"
	CodeForbidden    Code = "forbidden"
	CodeInvalidState Code = "invalid_state"

	// Store-boundary codes. CodeUnavailable covers backend states the
	// operator must fix (e.g. a missing composite index); CodePermission
	// covers store-level authorization failures.
	CodeRemoteWrite Code = "remote_write_failed"
	CodeUnavailable Code = "store_unavailable"
	CodePermission  Code = "permission_denied"
)

// Error is a coded domain error with optional structured details.
type Error struct {
	Code    Code
	Message string
	Err     error
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithDetail attaches a structured detail, returning the same error for chaining.
// Details surface machine-readable context (retry_after_seconds, the matching
// duplicate record) alongside the human message.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HasCode reports whether err or any wrapped error carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors so nothing leaks raw to the transport layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Detail returns a detail value from the nearest coded error, if present.
func Detail(err error, key string) (any, bool) {
	var de *Error
	if !errors.As(err, &de) || de.Details == nil {
		return nil, false
	}
	v, ok := de.Details[key]
	return v, ok
}

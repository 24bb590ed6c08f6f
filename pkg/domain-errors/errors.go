// Package domainerrors defines code-carrying errors shared across services.
// Services create these at the point a domain rule fails; transport layers
// translate codes into HTTP statuses without inspecting message text.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for callers and transport layers.
type Code string

const (
	// CodeInvalidInput covers malformed domain primitives (bad BI ID shape,
	// non-calendar date component). Never retried.
	CodeInvalidInput Code = "invalid_input"

	// CodeValidation covers requests that parse but break a domain rule
	// (missing claim fields, rating out of range).
	CodeValidation Code = "validation_failed"

	// CodeBadRequest covers transport-level problems (unparseable body).
	CodeBadRequest Code = "bad_request"

	// CodeNotFound covers references to businesses, claims, or BI IDs that
	// do not resolve. Distinct from CodeInvalidInput so callers can render
	// "not found" vs "bad input".
	CodeNotFound Code = "not_found"

	// CodeConflict covers lost races, e.g. approving a claim on a business
	// that is already claimed.
	CodeConflict Code = "conflict"

	// CodeExhausted covers identifier-space exhaustion for a given issuance
	// date. Fatal for that attempt only.
	CodeExhausted Code = "exhausted"

	// CodeUnauthorized covers missing or invalid admin credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeInternal covers unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a domain error with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode used at call sites that branch on
// error classes.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code onto an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeExhausted:
		return http.StatusTooManyRequests
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

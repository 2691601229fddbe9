// Package domainerrors is the error taxonomy shared by services and transport.
//
// Services return *Error values carrying a Code and a user-facing Message.
// Transport maps the Code onto an HTTP status with StatusFor; it never inspects
// the wrapped cause, which exists for logging only.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_error"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal_error"
)

// DefaultInternalMessage is shown to callers for every internal failure.
const DefaultInternalMessage = "Sorry, there has been an internal error."

// Error is a classified error with a message safe to return to clients.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Internal wraps an unexpected failure with the default internal message.
func Internal(err error) *Error {
	return Wrap(err, CodeInternal, DefaultInternalMessage)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias of HasCode kept for handler call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// StatusFor maps a code onto the HTTP status set exposed by the API.
func StatusFor(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicCode collapses internal-only codes onto the four codes clients see.
func PublicCode(code Code) Code {
	switch code {
	case CodeValidation:
		return CodeBadRequest
	case CodeTimeout:
		return CodeInternal
	default:
		return code
	}
}

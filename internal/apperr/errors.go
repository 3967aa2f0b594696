package apperr

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
)

// Kind classifies an error for the HTTP layer
type Kind int

const (
	Internal          Kind = iota // Unexpected or store failure, detail withheld
	Validation                    // Malformed or out-of-range input
	Unauthenticated               // Missing credential or wrong login
	InvalidCredential             // Credential present but invalid or expired
	NotFound                      // No matching record owned by the caller
	Conflict                      // Duplicate unique field
	InvalidOperation              // Referential-integrity violation
)

// Issue describes one violated input field
type Issue struct {
	Field   string `json:"field"`   // Offending field name as seen by the client
	Message string `json:"message"` // Human readable reason
}

// Error is the error type every layer returns for expected failures
type Error struct {
	Kind    Kind    // Classification
	Message string  // Client-facing message
	Issues  []Issue // Field issues, only for Validation
	Err     error   // Wrapped cause, never sent to the client
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps cause for logging
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Invalid creates a Validation error listing every issue
func Invalid(issues []Issue) *Error {
	return &Error{Kind: Validation, Message: "Validation failed", Issues: issues}
}

// As returns the *Error inside err, or an Internal error wrapping it
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(Internal, "Internal server error", err)
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Status maps a kind to its HTTP status code
func Status(kind Kind) int {
	switch kind {
	case Validation, InvalidOperation:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidCredential:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error with a machine-readable code
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotFound          Kind = "not_found"
	KindTransientStorage  Kind = "transient_storage"
	KindUnauthorized      Kind = "unauthorized"
	KindRateLimited       Kind = "rate_limited"
)

// FieldDetail describes a single field-level validation failure
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a structured domain error returned across the API boundary
type Error struct {
	Kind          Kind          `json:"code"`
	Message       string        `json:"message"`
	Details       []FieldDetail `json:"details,omitempty"`
	CorrelationID string        `json:"correlationId,omitempty"`
	cause         error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCorrelation returns a copy of the error carrying the request correlation id
func (e *Error) WithCorrelation(id string) *Error {
	clone := *e
	clone.CorrelationID = id
	return &clone
}

// HTTPStatus maps the error kind to an HTTP status code
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindTransientStorage:
		return http.StatusServiceUnavailable
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error with field-level details
func Validation(message string, details ...FieldDetail) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Conflict creates a uniqueness-violation error
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// InvalidTransition creates a state-machine violation error
func InvalidTransition(message string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: message}
}

// NotFound creates a missing-entity error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Transient creates a storage-failure error wrapping the underlying cause
func Transient(message string, cause error) *Error {
	return &Error{Kind: KindTransientStorage, Message: message, cause: cause}
}

// Unauthorized creates an authentication/authorization error
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// RateLimited creates a quota-exceeded error
func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message}
}

// As extracts a *Error from an error chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a domain error of the given kind
func IsKind(err error, kind Kind) bool {
	if e, ok := As(err); ok {
		return e.Kind == kind
	}
	return false
}

// Package apperr defines the error categories surfaced to API clients and
// their HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Category classifies an error for the caller.
type Category string

const (
	Unauthenticated      Category = "unauthenticated"
	Forbidden            Category = "forbidden"
	InvalidInput         Category = "invalid_input"
	NotFound             Category = "not_found"
	InvalidState         Category = "invalid_state"
	LengthMismatch       Category = "length_mismatch"
	UpstreamFailure      Category = "upstream_failure"
	StorageNotConfigured Category = "storage_not_configured"
	InvalidObjectKey     Category = "invalid_object_key"
	PersistenceFailure   Category = "persistence_failure"
)

// Error is a categorized error with a client-facing message.
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same category, so callers can write
// errors.Is(err, apperr.New(apperr.NotFound, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Category == e.Category
}

// New creates a categorized error.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Newf creates a categorized error with a formatted message.
func Newf(category Category, format string, args ...interface{}) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a category and message to an underlying error.
func Wrap(category Category, err error, message string) *Error {
	return &Error{Category: category, Message: message, Err: err}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return Newf(NotFound, format, args...)
}

func InvalidInputf(format string, args ...interface{}) *Error {
	return Newf(InvalidInput, format, args...)
}

// Upstream wraps a failure from an external service.
func Upstream(err error, message string) *Error {
	return Wrap(UpstreamFailure, err, message)
}

// Persistence wraps a datastore failure.
func Persistence(err error, message string) *Error {
	return Wrap(PersistenceFailure, err, message)
}

// CategoryOf returns the category of err. Uncategorized errors are treated
// as upstream failures.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return UpstreamFailure
}

// HasCategory reports whether err carries the given category.
func HasCategory(err error, category Category) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == category
}

// HTTPStatus maps a category to its response status code.
func HTTPStatus(category Category) int {
	switch category {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case InvalidInput, StorageNotConfigured:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case InvalidState:
		return http.StatusConflict
	case LengthMismatch:
		return http.StatusUnprocessableEntity
	case PersistenceFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// Package apperror defines the typed errors that services return and the HTTP
// layer renders.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindIntegrity       Kind = "DATABASE_INTEGRITY"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindForbidden       Kind = "FORBIDDEN"
	KindConflict        Kind = "CONFLICT"
	KindTooManyRequests Kind = "TOO_MANY_REQUESTS"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Fields     []FieldError
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithError attaches the underlying cause.
func (e *Error) WithError(err error) *Error {
	e.Err = err
	return e
}

func New(kind Kind, message string, statusCode int) *Error {
	return &Error{Kind: kind, Message: message, StatusCode: statusCode}
}

func Validation(message string, fields ...FieldError) *Error {
	e := New(KindValidation, message, http.StatusBadRequest)
	e.Fields = fields
	return e
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, http.StatusNotFound)
}

func Integrity(message string) *Error {
	return New(KindIntegrity, message, http.StatusConflict)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message, http.StatusForbidden)
}

func Conflict(message string) *Error {
	return New(KindConflict, message, http.StatusConflict)
}

func TooManyRequests(message string) *Error {
	return New(KindTooManyRequests, message, http.StatusTooManyRequests)
}

func Internal(message string) *Error {
	return New(KindInternal, message, http.StatusInternalServerError)
}

// As reports whether err carries an *Error and returns it.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

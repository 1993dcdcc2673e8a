// Package apperrors classifies failures of storefront operations so every layer can react to
// the kind of failure without parsing messages.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure.
type Kind string

const (
	KindAuthRequired     Kind = "auth_required"
	KindNotFound         Kind = "not_found"
	KindValidationFailed Kind = "validation_failed"
	KindRemoteFailure    Kind = "remote_failure"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindRateLimited      Kind = "rate_limited"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
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

// New creates an Error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// AuthRequired is returned when an operation needs a session and none is present.
func AuthRequired() *Error {
	return New(KindAuthRequired, "authentication required", nil)
}

// NotFound reports a missing or inaccessible row.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...), nil)
}

// Validation reports malformed input.
func Validation(format string, args ...any) *Error {
	return New(KindValidationFailed, fmt.Sprintf(format, args...), nil)
}

// Remote wraps a failure returned by the backing store.
func Remote(message string, err error) *Error {
	return New(KindRemoteFailure, message, err)
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(message string) *Error {
	return New(KindForbidden, message, nil)
}

// Conflict reports a uniqueness violation detected by the service.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...), nil)
}

// RateLimited reports a caller that must back off before retrying.
func RateLimited(message string) *Error {
	return New(KindRateLimited, message, nil)
}

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are treated as remote failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindRemoteFailure
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code the API responds with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

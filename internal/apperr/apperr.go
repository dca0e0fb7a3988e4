package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the API boundary
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindAuthentication Kind = "UNAUTHENTICATED"
	KindAuthorization  Kind = "FORBIDDEN"
	KindConflict       Kind = "CONFLICT"
	KindNotFound       Kind = "NOT_FOUND"
	KindBusinessRule   Kind = "BUSINESS_RULE"
	KindUpstream       Kind = "UPSTREAM"
)

// ServerErrorMessage is returned instead of upstream error details
const ServerErrorMessage = "Server error"

// Error is an error with a stable, client-facing message
type Error struct {
	Kind    Kind
	Message string
	Origin  error
}

func (e *Error) Error() string {
	if e.Origin != nil {
		return e.Message + ": " + e.Origin.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Origin
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind caused by origin
func Wrap(kind Kind, message string, origin error) *Error {
	return &Error{Kind: kind, Message: message, Origin: origin}
}

func Validation(message string) *Error   { return New(KindValidation, message) }
func Forbidden(message string) *Error    { return New(KindAuthorization, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func BusinessRule(message string) *Error { return New(KindBusinessRule, message) }

// Unauthenticated is returned for unknown users and stale session keys
func Unauthenticated() *Error {
	return New(KindAuthentication, "Couldn't authenticate session")
}

// Upstream wraps a store or service failure
func Upstream(message string, origin error) *Error {
	return Wrap(KindUpstream, message, origin)
}

// KindOf returns the kind of err, KindUpstream for unclassified errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUpstream
}

// HTTPStatus maps err to a response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindBusinessRule:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to send to the client
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUpstream {
		return appErr.Message
	}
	return ServerErrorMessage
}

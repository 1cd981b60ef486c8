// Package apperrors defines the error taxonomy shared by the HTTP and
// websocket boundaries. Every failure a caller can act on is one of these
// kinds; infrastructure failures wrap as Internal and are never retried here.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindValidation     Kind = "validation"
	KindInternal       Kind = "internal"
)

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

func newError(kind Kind, msg string, wrapped ...error) *Error {
	e := &Error{Kind: kind, Message: msg}
	if len(wrapped) > 0 {
		e.Err = wrapped[0]
	}
	return e
}

func Authentication(msg string, wrapped ...error) *Error {
	return newError(KindAuthentication, msg, wrapped...)
}

func Authorization(msg string, wrapped ...error) *Error {
	return newError(KindAuthorization, msg, wrapped...)
}

func NotFound(msg string, wrapped ...error) *Error {
	return newError(KindNotFound, msg, wrapped...)
}

func Conflict(msg string, wrapped ...error) *Error {
	return newError(KindConflict, msg, wrapped...)
}

func Validation(msg string, wrapped ...error) *Error {
	return newError(KindValidation, msg, wrapped...)
}

func Internal(msg string, wrapped ...error) *Error {
	return newError(KindInternal, msg, wrapped...)
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }
func IsAuthorization(err error) bool  { return KindOf(err) == KindAuthorization }
func IsNotFound(err error) bool       { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool       { return KindOf(err) == KindConflict }
func IsValidation(err error) bool     { return KindOf(err) == KindValidation }

// HTTPStatus maps an error kind to the status code reported at the REST
// boundary. Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the message safe to send to the caller. Internal errors are
// masked so infrastructure detail never leaks to clients.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

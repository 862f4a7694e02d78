/*
Package apperr holds the error taxonomy shared by the ledger, the stats engine
and the HTTP layer.

Every failure that leaves the core carries a Kind. Handlers map the Kind to a
status code and a stable "code" field; the message is human readable. Errors
are created with a stack attached so non-production responses can include it.

USAGE:

	if err := target.Validate(); err != nil {
	    return apperr.InvalidArgument(err.Error())
	}

	if errors.Is(err, apperr.ErrNotFound) {
	    ...
	}
*/
package apperr

import (
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type Kind string

const (
	KindUnauthorized       Kind = "unauthorized"
	KindInvalidArgument    Kind = "invalid_argument"
	KindNotFound           Kind = "not_found"
	KindTransactionFailure Kind = "transaction_failure"
	KindInternal           Kind = "internal"
)

// Error is a classified failure. Cause is optional.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message != "" {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the bare sentinels below by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrTransactionFailure = &Error{Kind: KindTransactionFailure}
)

func newError(kind Kind, msg string, cause error) error {
	return pkgerrors.WithStack(&Error{Kind: kind, Message: msg, Cause: cause})
}

func Unauthorized(msg string) error {
	return newError(KindUnauthorized, msg, nil)
}

func InvalidArgument(msg string) error {
	return newError(KindInvalidArgument, msg, nil)
}

func NotFound(msg string) error {
	return newError(KindNotFound, msg, nil)
}

// TransactionFailure wraps a store error that aborted a transaction.
func TransactionFailure(msg string, cause error) error {
	return newError(KindTransactionFailure, msg, cause)
}

func Internal(msg string, cause error) error {
	return newError(KindInternal, msg, cause)
}

// KindOf returns the classification of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the human readable part of a classified error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return string(e.Kind)
	}
	return "internal error"
}

// IsClassified reports whether err already carries a Kind.
func IsClassified(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError returns true if the error is due to the caller's input or identity.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindUnauthorized, KindInvalidArgument, KindNotFound:
		return true
	}
	return false
}

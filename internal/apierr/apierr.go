// Package apierr defines the closed set of error kinds the catalog server
// exposes to clients, and the single place that maps them to HTTP status.
package apierr

import (
	"errors"
	"net/http"
)

// Kind is one of the error kinds clients are allowed to see.
type Kind string

const (
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindNotFound             Kind = "not_found"
	KindRangeNotSatisfiable  Kind = "range_not_satisfiable"
	KindConflict             Kind = "conflict"
	KindGone                 Kind = "gone"
	KindValidationFailure    Kind = "validation_failure"
	KindRateLimited          Kind = "rate_limited"
	KindInternal             Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindUnauthorized:        http.StatusUnauthorized,
	KindForbidden:           http.StatusForbidden,
	KindNotFound:            http.StatusNotFound,
	KindRangeNotSatisfiable: http.StatusRequestedRangeNotSatisfiable,
	KindConflict:            http.StatusConflict,
	KindGone:                http.StatusGone,
	KindValidationFailure:   http.StatusBadRequest,
	KindRateLimited:         http.StatusTooManyRequests,
	KindInternal:            http.StatusInternalServerError,
}

// Error is a typed, client-surfaceable error. Anything that isn't an *Error
// is treated as internal and its detail is never sent to the client.
type Error struct {
	Kind    Kind
	Message string
	Reason  string // optional extra detail surfaced for Conflict/Gone kinds
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status code for this error's kind.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Unauthorized(message string) *Error      { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error         { return New(KindForbidden, message) }
func ValidationFailure(message string) *Error { return New(KindValidationFailure, message) }
func RateLimited(message string) *Error       { return New(KindRateLimited, message) }

func Conflict(message, reason string) *Error {
	return &Error{Kind: KindConflict, Message: message, Reason: reason}
}

func Gone(message, reason string) *Error {
	return &Error{Kind: KindGone, Message: message, Reason: reason}
}

func RangeNotSatisfiable(message string) *Error {
	return New(KindRangeNotSatisfiable, message)
}

// As extracts an *Error from err, if present.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusFor returns the HTTP status for any error, defaulting unknown
// errors to 500 per the "unknown failures ... returned as 500 with no
// internal detail" propagation policy.
func StatusFor(err error) int {
	if e, ok := As(err); ok {
		return e.Status()
	}
	return http.StatusInternalServerError
}

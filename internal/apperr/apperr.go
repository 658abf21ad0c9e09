package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Kind classifies an application error so handlers can map it to an HTTP status.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindUnknownStudent
	KindNotEnrolled
	KindSessionNotActive
	KindInsufficientStock
	KindScheduleConflict
	KindInvalidTransition
	KindTimeout
	KindUnavailable
	KindInternal
)

// Error is a business-rule or infrastructure failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) *Error        { return New(KindValidation, msg) }
func Unauthorized(msg string) *Error      { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error         { return New(KindForbidden, msg) }
func NotFound(msg string) *Error          { return New(KindNotFound, msg) }
func UnknownStudent(msg string) *Error    { return New(KindUnknownStudent, msg) }
func NotEnrolled(msg string) *Error       { return New(KindNotEnrolled, msg) }
func SessionNotActive(msg string) *Error  { return New(KindSessionNotActive, msg) }
func InsufficientStock(msg string) *Error { return New(KindInsufficientStock, msg) }
func ScheduleConflict(msg string) *Error  { return New(KindScheduleConflict, msg) }
func InvalidTransition(msg string) *Error { return New(KindInvalidTransition, msg) }
func Timeout(msg string) *Error           { return New(KindTimeout, msg) }
func Unavailable(msg string) *Error       { return New(KindUnavailable, msg) }

// KindOf extracts the kind from err, normalizing context deadline errors to
// KindTimeout. Unrecognized errors are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code the API returns for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindNotEnrolled:
		return http.StatusForbidden
	case KindNotFound, KindUnknownStudent:
		return http.StatusNotFound
	case KindSessionNotActive, KindInsufficientStock, KindScheduleConflict, KindInvalidTransition:
		return http.StatusConflict
	case KindTimeout, KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message for err. Internal errors are masked.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "operation timed out"
	}
	return "internal server error"
}

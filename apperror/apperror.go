// Package apperror defines the caller-actionable error kinds shared by every service.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the presentation layer can react to it.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindCapacityExceeded   Kind = "capacity_exceeded"
	KindDuplicateBooking   Kind = "duplicate_booking"
	KindInvalidTransition  Kind = "invalid_transition"
	KindWindowExpired      Kind = "window_expired"
	KindWindowNotFound     Kind = "window_not_found"
	KindWindowExhausted    Kind = "window_exhausted"
	KindNoActiveBooking    Kind = "no_active_booking"
	KindOccurrenceMismatch Kind = "occurrence_mismatch"
	KindValidation         Kind = "validation_error"
	KindOverlap            Kind = "overlap"
	KindUnavailable        Kind = "unavailable"
	// KindConflict marks an optimistic write conflict. It is retried inside the
	// services and never returned to a caller.
	KindConflict Kind = "conflict"
)

// Error is a typed error carrying a Kind and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality, so errors.Is(err, ErrCapacityExceeded) works for any
// message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "caller is not allowed to perform this action"}
	ErrCapacityExceeded   = &Error{Kind: KindCapacityExceeded, Message: "occurrence is fully booked"}
	ErrDuplicateBooking   = &Error{Kind: KindDuplicateBooking, Message: "consumer already holds a booking for this occurrence"}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition, Message: "booking status transition is not allowed"}
	ErrWindowExpired      = &Error{Kind: KindWindowExpired, Message: "check-in code has expired"}
	ErrWindowNotFound     = &Error{Kind: KindWindowNotFound, Message: "check-in code not recognised"}
	ErrWindowExhausted    = &Error{Kind: KindWindowExhausted, Message: "check-in code has no uses left"}
	ErrNoActiveBooking    = &Error{Kind: KindNoActiveBooking, Message: "no active booking for this occurrence"}
	ErrOccurrenceMismatch = &Error{Kind: KindOccurrenceMismatch, Message: "check-in code belongs to a different occurrence"}
	ErrValidation         = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrOverlap            = &Error{Kind: KindOverlap, Message: "time window overlaps an existing occurrence"}
	ErrUnavailable        = &Error{Kind: KindUnavailable, Message: "service temporarily unavailable"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "concurrent modification"}
)

// New builds an error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to a cause.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation is shorthand for a KindValidation error.
func Validation(format string, args ...any) error {
	return Newf(KindValidation, format, args...)
}

// NotFound is shorthand for a KindNotFound error naming the missing entity.
func NotFound(entity, id string) error {
	return Newf(KindNotFound, "%s %s not found", entity, id)
}

// KindOf returns the kind of the first *Error in the chain, or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps a kind to the status code handlers respond with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound, KindWindowNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindCapacityExceeded, KindDuplicateBooking, KindInvalidTransition, KindOverlap, KindWindowExhausted:
		return http.StatusConflict
	case KindWindowExpired:
		return http.StatusGone
	case KindNoActiveBooking, KindOccurrenceMismatch, KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnavailable, KindConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

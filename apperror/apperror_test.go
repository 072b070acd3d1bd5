package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Newf(KindCapacityExceeded, "occurrence %s is full", "occ-1")
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.False(t, errors.Is(err, ErrDuplicateBooking))

	wrapped := fmt.Errorf("reserve: %w", err)
	assert.True(t, errors.Is(wrapped, ErrCapacityExceeded))
	assert.Equal(t, KindCapacityExceeded, KindOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindUnavailable, "occurrence is busy", cause)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, "unavailable: occurrence is busy: connection reset", err.Error())
}

func TestKindOfUntyped(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindNotFound:           http.StatusNotFound,
		KindWindowNotFound:     http.StatusNotFound,
		KindForbidden:          http.StatusForbidden,
		KindCapacityExceeded:   http.StatusConflict,
		KindDuplicateBooking:   http.StatusConflict,
		KindInvalidTransition:  http.StatusConflict,
		KindOverlap:            http.StatusConflict,
		KindWindowExhausted:    http.StatusConflict,
		KindWindowExpired:      http.StatusGone,
		KindNoActiveBooking:    http.StatusUnprocessableEntity,
		KindOccurrenceMismatch: http.StatusUnprocessableEntity,
		KindValidation:         http.StatusUnprocessableEntity,
		KindUnavailable:        http.StatusServiceUnavailable,
		Kind("mystery"):        http.StatusInternalServerError,
	}
	for kind, status := range tests {
		assert.Equal(t, status, HTTPStatus(kind), kind)
	}
}

// Package repository holds the storage contracts shared by the entity repositories.
package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrVersionConflict is returned when an optimistic version or revision check
	// fails. It is transient: the caller reloads and retries.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

// Transactor runs fn atomically. Repository calls made with the ctx passed to fn
// take part in the transaction; on error nothing fn wrote is kept.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IsTransient reports whether err is worth retrying: optimistic conflicts, and
// whatever the backing store classifies as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrVersionConflict) {
		return true
	}
	return isMongoTransient(err)
}

// Package gate serializes every write that touches one occurrence's booking set.
package gate

import (
	"context"
	"errors"
	"time"

	"attendly/apperror"
	"attendly/database/repository"
	occurrenceRepo "attendly/database/repository/occurrence"
	"attendly/models"
	"attendly/utils"

	"go.uber.org/zap"
)

// OccurrenceGate runs a mutation under the occurrence's in-process lock and
// inside a store transaction that bumps the occurrence version. Writers in other
// processes collide on the version and are retried.
type OccurrenceGate struct {
	Tx          repository.Transactor
	Occurrences occurrenceRepo.OccurrenceRepository
	Locks       *utils.KeyedLocker
	Retry       RetryPolicy
	LockTimeout time.Duration
	Logger      *zap.Logger
}

// Serialize loads the occurrence inside the transaction and hands it to fn. The
// occurrence passed to fn already carries the bumped version. fn may run more
// than once, so it must not have effects outside the transaction.
func (g *OccurrenceGate) Serialize(ctx context.Context, occurrenceID string, fn func(ctx context.Context, occ *models.Occurrence) error) error {
	release, err := g.lock(ctx, occurrenceID)
	if err != nil {
		return err
	}
	defer release()

	err = g.Retry.Do(ctx, func(attempt int) error {
		err := g.Tx.WithTransaction(ctx, func(tx context.Context) error {
			occ, err := g.Occurrences.GetByID(tx, occurrenceID)
			if err != nil {
				return StoreError(err, "occurrence", occurrenceID)
			}
			if err := g.Occurrences.Bump(tx, occ.ID, occ.Version); err != nil {
				return err
			}
			occ.Version++
			return fn(tx, occ)
		})
		if err != nil && repository.IsTransient(err) {
			g.logger().Warn("Transient store error on occurrence write",
				zap.String("occurrenceID", occurrenceID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	})
	if errors.Is(err, ErrRetriesExhausted) {
		return apperror.Wrap(apperror.KindUnavailable, "occurrence is busy, try again", err)
	}
	return err
}

func (g *OccurrenceGate) lock(ctx context.Context, occurrenceID string) (func(), error) {
	if g.Locks == nil {
		return func() {}, nil
	}
	lockCtx := ctx
	if g.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, g.LockTimeout)
		defer cancel()
	}
	release, err := g.Locks.Lock(lockCtx, occurrenceID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logger().Warn("Timed out waiting for occurrence lock", zap.String("occurrenceID", occurrenceID))
		return nil, apperror.Wrap(apperror.KindUnavailable, "occurrence is busy, try again", err)
	}
	return release, nil
}

func (g *OccurrenceGate) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// StoreError turns repository.ErrNotFound into a NotFound naming the entity and
// passes everything else through.
func StoreError(err error, entity, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(entity, id)
	}
	return err
}

package occurrence

import (
	"context"
	"errors"
	"time"

	"attendly/apperror"
	"attendly/models"
	"attendly/services/gate"

	"go.uber.org/zap"
)

func (s *DefaultOccurrenceService) Insert(ctx context.Context, occ *models.Occurrence) error {
	err := s.Gate.Retry.Do(ctx, func(int) error {
		return s.Tx.WithTransaction(ctx, func(tx context.Context) error {
			if err := s.checkOverlap(tx, occ); err != nil {
				return err
			}
			return s.Occurrences.Create(tx, occ)
		})
	})
	if err != nil {
		if errors.Is(err, gate.ErrRetriesExhausted) {
			return apperror.Wrap(apperror.KindUnavailable, "could not store occurrence, try again", err)
		}
		return err
	}

	s.logger().Debug("Occurrence stored",
		zap.String("occurrenceID", occ.ID),
		zap.String("locationID", occ.LocationID),
		zap.Time("start", occ.Start))
	s.scheduleReconcile(ctx, occ)
	s.publish(ctx, models.ChangeInsert, occ)
	return nil
}

// UpdateOccurrence edits start, end and capacity under the occurrence gate.
// Capacity may not drop below the active booking count.
func (s *DefaultOccurrenceService) UpdateOccurrence(ctx context.Context, callerID, occurrenceID string, req models.UpdateOccurrenceRequest) (*models.Occurrence, error) {
	current, err := s.Occurrences.GetByID(ctx, occurrenceID)
	if err != nil {
		return nil, gate.StoreError(err, "occurrence", occurrenceID)
	}
	if err := s.Owners.Occurrence(ctx, callerID, current); err != nil {
		return nil, err
	}

	var (
		updated  *models.Occurrence
		movedEnd bool
	)
	err = s.Gate.Serialize(ctx, occurrenceID, func(tx context.Context, occ *models.Occurrence) error {
		updated, movedEnd = nil, false
		prevStart, prevEnd := occ.Start, occ.End

		if req.Start != nil {
			occ.Start = req.Start.UTC()
		}
		if req.End != nil {
			occ.End = req.End.UTC()
		}
		if req.Capacity != nil {
			occ.Capacity = *req.Capacity
		}
		if err := validateWindow(occ); err != nil {
			return err
		}

		active, err := s.Bookings.CountActive(tx, occ.ID)
		if err != nil {
			return err
		}
		if occ.Capacity < active {
			return apperror.Validation("capacity %d is below the %d active bookings", occ.Capacity, active)
		}

		if !occ.Start.Equal(prevStart) || !occ.End.Equal(prevEnd) {
			if err := s.checkOverlap(tx, occ); err != nil {
				return err
			}
		}
		if err := s.Occurrences.Update(tx, occ); err != nil {
			return err
		}
		updated, movedEnd = occ, !occ.End.Equal(prevEnd)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info("Occurrence updated", zap.String("occurrenceID", occurrenceID), zap.String("callerID", callerID))
	if movedEnd {
		s.scheduleReconcile(ctx, updated)
	}
	s.publish(ctx, models.ChangeUpdate, updated)
	return updated, nil
}

// checkOverlap touches the location so concurrent inserts at it conflict, then
// looks for a colliding occurrence.
func (s *DefaultOccurrenceService) checkOverlap(tx context.Context, occ *models.Occurrence) error {
	if occ.LocationID == "" {
		return nil
	}
	if err := s.Locations.Touch(tx, occ.LocationID); err != nil {
		return gate.StoreError(err, "location", occ.LocationID)
	}
	hits, err := s.Occurrences.FindOverlapping(tx, occ.LocationID, occ.Start, occ.End, occ.ID)
	if err != nil {
		return err
	}
	if len(hits) > 0 {
		return apperror.Newf(apperror.KindOverlap, "%s-%s overlaps occurrence %s",
			occ.Start.Format(time.RFC3339), occ.End.Format(time.RFC3339), hits[0].ID)
	}
	return nil
}

func (s *DefaultOccurrenceService) scheduleReconcile(ctx context.Context, occ *models.Occurrence) {
	if s.Tasks == nil {
		return
	}
	fireAt := occ.End.Add(s.ReconcileGrace)
	if err := s.Tasks.EnqueueReconcile(ctx, occ.ID, fireAt); err != nil {
		s.logger().Warn("Failed to schedule reconciliation",
			zap.String("occurrenceID", occ.ID),
			zap.Time("fireAt", fireAt),
			zap.Error(err))
	}
}

func (s *DefaultOccurrenceService) publish(ctx context.Context, op models.ChangeOp, occ *models.Occurrence) {
	if s.Notifier == nil {
		return
	}
	copied := *occ
	event := models.ChangeEvent{
		Op:           op,
		Table:        models.TableOccurrences,
		OccurrenceID: occ.ID,
		Occurrence:   &copied,
		At:           s.now(),
	}
	if err := s.Notifier.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger().Warn("Failed to publish occurrence change", zap.String("occurrenceID", occ.ID), zap.Error(err))
	}
}

func (s *DefaultOccurrenceService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *DefaultOccurrenceService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

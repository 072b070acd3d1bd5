package checkin

import (
	"context"
	"errors"
	"strings"

	"attendly/apperror"
	"attendly/database/repository"
	"attendly/models"
	"attendly/utils"

	"go.uber.org/zap"
)

// CheckIn validates code against the occurrence and marks the consumer's active
// booking checked in. Checks run in a fixed order: unknown code, wrong
// occurrence, expiry, use count, then the booking itself.
func (s *DefaultCheckInService) CheckIn(ctx context.Context, consumerID, occurrenceID, code string) (*models.Booking, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.Validation("check-in code is required")
	}

	w, err := s.Windows.GetByTokenHash(ctx, utils.HashToken(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrWindowNotFound
		}
		return nil, err
	}
	if w.OccurrenceID != occurrenceID {
		s.logger().Warn("Check-in code presented for another occurrence",
			zap.String("windowID", w.ID),
			zap.String("windowOccurrenceID", w.OccurrenceID),
			zap.String("occurrenceID", occurrenceID),
			zap.String("consumerID", consumerID))
		return nil, apperror.ErrOccurrenceMismatch
	}

	var (
		result  *models.Booking
		changed bool
	)
	err = s.Gate.Serialize(ctx, occurrenceID, func(tx context.Context, occ *models.Occurrence) error {
		result, changed = nil, false

		win, err := s.Windows.GetByID(tx, w.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.ErrWindowNotFound
			}
			return err
		}
		now := s.now()
		if win.ExpiredAt(now) {
			return apperror.ErrWindowExpired
		}
		if win.Exhausted() {
			return apperror.ErrWindowExhausted
		}

		b, err := s.Bookings.FindHeldByConsumer(tx, occ.ID, consumerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.ErrNoActiveBooking
			}
			return err
		}
		if b.CheckedIn() {
			result = b
			return nil
		}
		if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
			return apperror.ErrNoActiveBooking
		}

		if err := s.Windows.IncrementUses(tx, win.ID, win.Uses); err != nil {
			return err
		}
		b.CheckedInAt = &now
		b.CheckInWindowID = win.ID
		b.Status = models.BookingConfirmed
		b.UpdatedAt = now
		if err := s.Bookings.Update(tx, b); err != nil {
			return err
		}
		result, changed = b, true
		return nil
	})
	if err != nil {
		s.logger().Info("Check-in rejected",
			zap.String("occurrenceID", occurrenceID),
			zap.String("consumerID", consumerID),
			zap.String("kind", string(apperror.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	if changed {
		s.logger().Info("Consumer checked in",
			zap.String("bookingID", result.ID),
			zap.String("occurrenceID", occurrenceID),
			zap.String("windowID", w.ID))
		s.publish(ctx, result)
	}
	return result, nil
}

func (s *DefaultCheckInService) publish(ctx context.Context, b *models.Booking) {
	if s.Notifier == nil {
		return
	}
	copied := *b
	event := models.ChangeEvent{
		Op:           models.ChangeUpdate,
		Table:        models.TableBookings,
		OccurrenceID: b.OccurrenceID,
		Booking:      &copied,
		At:           s.now(),
	}
	if err := s.Notifier.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger().Warn("Failed to publish check-in", zap.String("bookingID", b.ID), zap.Error(err))
	}
}

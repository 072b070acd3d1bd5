package booking

import (
	"context"
	"errors"

	"attendly/apperror"
	"attendly/database/repository"
	"attendly/models"
	"attendly/services/gate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reserve admits a new pending booking when the consumer holds no non-cancelled
// booking for the occurrence and a seat is free. Count and insert happen in one
// serialized transaction.
func (s *DefaultBookingService) Reserve(ctx context.Context, consumerID, occurrenceID string) (*models.Booking, error) {
	if consumerID == "" {
		return nil, apperror.Validation("consumer id is required")
	}

	var created *models.Booking
	err := s.Gate.Serialize(ctx, occurrenceID, func(tx context.Context, occ *models.Occurrence) error {
		created = nil

		existing, err := s.Bookings.FindHeldByConsumer(tx, occ.ID, consumerID)
		switch {
		case err == nil:
			return apperror.Newf(apperror.KindDuplicateBooking, "consumer already holds booking %s", existing.ID)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		active, err := s.Bookings.CountActive(tx, occ.ID)
		if err != nil {
			return err
		}
		if active >= occ.Capacity {
			return apperror.Newf(apperror.KindCapacityExceeded, "occurrence %s is full (%d/%d)", occ.ID, active, occ.Capacity)
		}

		now := s.now()
		b := &models.Booking{
			ID:            uuid.New().String(),
			OccurrenceID:  occ.ID,
			ConsumerID:    consumerID,
			Status:        models.BookingPending,
			PaymentStatus: models.PaymentNone,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.Bookings.Create(tx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperror.Wrap(apperror.KindDuplicateBooking, "consumer already holds a booking for this occurrence", err)
			}
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		s.logRejection("Reservation rejected", err, zap.String("occurrenceID", occurrenceID), zap.String("consumerID", consumerID))
		return nil, err
	}

	s.logger().Info("Booking reserved",
		zap.String("bookingID", created.ID),
		zap.String("occurrenceID", occurrenceID),
		zap.String("consumerID", consumerID))
	s.publish(ctx, models.ChangeInsert, created)
	return created, nil
}

// Cancel is idempotent: cancelling a cancelled booking returns it unchanged. The
// consumer and the owning provider may cancel.
func (s *DefaultBookingService) Cancel(ctx context.Context, callerID, bookingID string) (*models.Booking, error) {
	current, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, callerID, current); err != nil {
		return nil, err
	}

	var (
		result  *models.Booking
		changed bool
	)
	err = s.Gate.Serialize(ctx, current.OccurrenceID, func(tx context.Context, _ *models.Occurrence) error {
		result, changed = nil, false

		b, err := s.Bookings.GetByID(tx, bookingID)
		if err != nil {
			return gate.StoreError(err, "booking", bookingID)
		}
		if b.Status == models.BookingCancelled {
			result = b
			return nil
		}
		if !b.Status.CanTransition(models.BookingCancelled) {
			return apperror.Newf(apperror.KindInvalidTransition, "cannot cancel a %s booking", b.Status)
		}
		b.Status = models.BookingCancelled
		b.UpdatedAt = s.now()
		if err := s.Bookings.Update(tx, b); err != nil {
			return err
		}
		result, changed = b, true
		return nil
	})
	if err != nil {
		s.logRejection("Cancellation rejected", err, zap.String("bookingID", bookingID))
		return nil, err
	}
	if changed {
		s.logger().Info("Booking cancelled", zap.String("bookingID", bookingID), zap.String("callerID", callerID))
		s.publish(ctx, models.ChangeUpdate, result)
	}
	return result, nil
}

package booking

import (
	"context"

	"attendly/apperror"
	"attendly/models"
	"attendly/services/gate"

	"go.uber.org/zap"
)

// Confirm promotes a pending booking. Confirming a confirmed booking is a no-op.
func (s *DefaultBookingService) Confirm(ctx context.Context, callerID, bookingID string) (*models.Booking, error) {
	return s.override(ctx, callerID, bookingID, "confirm", func(b *models.Booking) (bool, error) {
		switch b.Status {
		case models.BookingConfirmed:
			return false, nil
		case models.BookingPending:
			b.Status = models.BookingConfirmed
			return true, nil
		}
		return false, apperror.Newf(apperror.KindInvalidTransition, "cannot confirm a %s booking", b.Status)
	})
}

// SetPaymentStatus records a payment status. It is a plain field write and is
// allowed on terminal bookings, so a refund can be noted after cancellation.
func (s *DefaultBookingService) SetPaymentStatus(ctx context.Context, callerID, bookingID string, status models.PaymentStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, apperror.Validation("unknown payment status %q", status)
	}
	return s.override(ctx, callerID, bookingID, "payment", func(b *models.Booking) (bool, error) {
		if b.PaymentStatus == status {
			return false, nil
		}
		b.PaymentStatus = status
		return true, nil
	})
}

// ManualCheckIn sets the check-in timestamp without a window. A pending booking
// is promoted to confirmed.
func (s *DefaultBookingService) ManualCheckIn(ctx context.Context, callerID, bookingID string) (*models.Booking, error) {
	return s.override(ctx, callerID, bookingID, "checkin", func(b *models.Booking) (bool, error) {
		if b.CheckedIn() {
			return false, nil
		}
		if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
			return false, apperror.Newf(apperror.KindInvalidTransition, "cannot check in a %s booking", b.Status)
		}
		now := s.now()
		b.CheckedInAt = &now
		b.Status = models.BookingConfirmed
		return true, nil
	})
}

// MarkOutcome settles a confirmed booking as completed or no_show.
func (s *DefaultBookingService) MarkOutcome(ctx context.Context, callerID, bookingID string, outcome models.BookingStatus) (*models.Booking, error) {
	if outcome != models.BookingCompleted && outcome != models.BookingNoShow {
		return nil, apperror.Validation("outcome must be %q or %q", models.BookingCompleted, models.BookingNoShow)
	}
	return s.override(ctx, callerID, bookingID, "outcome", func(b *models.Booking) (bool, error) {
		if b.Status == outcome {
			return false, nil
		}
		if err := settle(b, outcome); err != nil {
			return false, err
		}
		return true, nil
	})
}

func settle(b *models.Booking, outcome models.BookingStatus) error {
	if !b.Status.CanTransition(outcome) {
		return apperror.Newf(apperror.KindInvalidTransition, "cannot mark a %s booking as %s", b.Status, outcome)
	}
	if outcome == models.BookingNoShow && b.CheckedIn() {
		return apperror.New(apperror.KindInvalidTransition, "a checked-in booking cannot be a no-show")
	}
	b.Status = outcome
	return nil
}

// override runs an ownership-gated field write under the occurrence gate. apply
// edits b in place and reports whether anything changed.
func (s *DefaultBookingService) override(ctx context.Context, callerID, bookingID, action string, apply func(b *models.Booking) (bool, error)) (*models.Booking, error) {
	current, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProvider(ctx, callerID, current); err != nil {
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
		ok, err := apply(b)
		if err != nil {
			return err
		}
		if ok {
			b.UpdatedAt = s.now()
			if err := s.Bookings.Update(tx, b); err != nil {
				return err
			}
		}
		result, changed = b, ok
		return nil
	})
	if err != nil {
		s.logRejection("Provider override rejected", err, zap.String("bookingID", bookingID), zap.String("action", action))
		return nil, err
	}
	if changed {
		s.logger().Info("Provider override applied",
			zap.String("bookingID", bookingID),
			zap.String("action", action),
			zap.String("callerID", callerID))
		s.publish(ctx, models.ChangeUpdate, result)
	}
	return result, nil
}

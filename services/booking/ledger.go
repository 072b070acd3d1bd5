package booking

import (
	"context"
	"time"

	"attendly/apperror"
	"attendly/models"
	"attendly/services/gate"

	"go.uber.org/zap"
)

// GetBooking returns a booking to its consumer or to the owning provider.
func (s *DefaultBookingService) GetBooking(ctx context.Context, callerID, bookingID string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(ctx, callerID, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *DefaultBookingService) ListConsumerBookings(ctx context.Context, consumerID string) ([]models.Booking, error) {
	return s.Bookings.ListByConsumer(ctx, consumerID)
}

// ReconcileOccurrence settles every confirmed booking once the occurrence has
// ended: checked in becomes completed, otherwise no_show. Pending bookings are
// left for the provider and only counted. Before the end it does nothing.
func (s *DefaultBookingService) ReconcileOccurrence(ctx context.Context, occurrenceID string) (*models.ReconcileResult, error) {
	var (
		result  models.ReconcileResult
		settled []*models.Booking
	)
	err := s.Gate.Serialize(ctx, occurrenceID, func(tx context.Context, occ *models.Occurrence) error {
		result, settled = models.ReconcileResult{}, nil

		now := s.now()
		if now.Before(occ.End) {
			return nil
		}
		bookings, err := s.Bookings.ListByOccurrence(tx, occ.ID)
		if err != nil {
			return err
		}
		for i := range bookings {
			b := &bookings[i]
			switch b.Status {
			case models.BookingPending:
				result.Pending++
				continue
			case models.BookingConfirmed:
			default:
				continue
			}
			outcome := models.BookingNoShow
			if b.CheckedIn() {
				outcome = models.BookingCompleted
			}
			if err := settle(b, outcome); err != nil {
				return err
			}
			b.UpdatedAt = now
			if err := s.Bookings.Update(tx, b); err != nil {
				return err
			}
			if outcome == models.BookingCompleted {
				result.Completed++
			} else {
				result.NoShow++
			}
			settled = append(settled, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info("Occurrence reconciled",
		zap.String("occurrenceID", occurrenceID),
		zap.Int("completed", result.Completed),
		zap.Int("noShow", result.NoShow),
		zap.Int("pending", result.Pending))
	for _, b := range settled {
		s.publish(ctx, models.ChangeUpdate, b)
	}
	return &result, nil
}

func (s *DefaultBookingService) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, gate.StoreError(err, "booking", bookingID)
	}
	return b, nil
}

func (s *DefaultBookingService) providerOf(ctx context.Context, b *models.Booking) (string, error) {
	occ, err := s.Occurrences.GetByID(ctx, b.OccurrenceID)
	if err != nil {
		return "", gate.StoreError(err, "occurrence", b.OccurrenceID)
	}
	return s.Owners.ProviderOf(ctx, occ)
}

// authorizeParty admits the booking's consumer or the owning provider.
func (s *DefaultBookingService) authorizeParty(ctx context.Context, callerID string, b *models.Booking) error {
	if callerID != "" && callerID == b.ConsumerID {
		return nil
	}
	return s.authorizeProvider(ctx, callerID, b)
}

func (s *DefaultBookingService) authorizeProvider(ctx context.Context, callerID string, b *models.Booking) error {
	providerID, err := s.providerOf(ctx, b)
	if err != nil {
		return err
	}
	if callerID == "" || callerID != providerID {
		return apperror.Newf(apperror.KindForbidden, "caller may not act on booking %s", b.ID)
	}
	return nil
}

func (s *DefaultBookingService) publish(ctx context.Context, op models.ChangeOp, b *models.Booking) {
	if s.Notifier == nil {
		return
	}
	copied := *b
	event := models.ChangeEvent{
		Op:           op,
		Table:        models.TableBookings,
		OccurrenceID: b.OccurrenceID,
		Booking:      &copied,
		At:           s.now(),
	}
	if err := s.Notifier.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger().Warn("Failed to publish booking change",
			zap.String("bookingID", b.ID),
			zap.String("occurrenceID", b.OccurrenceID),
			zap.Error(err))
	}
}

func (s *DefaultBookingService) logRejection(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("kind", string(apperror.KindOf(err))), zap.Error(err))
	switch apperror.KindOf(err) {
	case "", apperror.KindUnavailable:
		s.logger().Error(msg, fields...)
	default:
		s.logger().Info(msg, fields...)
	}
}

func (s *DefaultBookingService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

package booking

import (
	"context"

	bookingRepo "attendly/database/repository/booking"
	occurrenceRepo "attendly/database/repository/occurrence"
	"attendly/models"
	"attendly/services/gate"
	"attendly/services/notifier"
	"attendly/utils"

	"go.uber.org/zap"
)

// BookingService is the Capacity Gate plus the Booking Ledger: the only writer of
// booking rows apart from check-in.
type BookingService interface {
	Reserve(ctx context.Context, consumerID, occurrenceID string) (*models.Booking, error)
	Cancel(ctx context.Context, callerID, bookingID string) (*models.Booking, error)

	// Provider overrides.
	Confirm(ctx context.Context, callerID, bookingID string) (*models.Booking, error)
	SetPaymentStatus(ctx context.Context, callerID, bookingID string, status models.PaymentStatus) (*models.Booking, error)
	ManualCheckIn(ctx context.Context, callerID, bookingID string) (*models.Booking, error)
	MarkOutcome(ctx context.Context, callerID, bookingID string, outcome models.BookingStatus) (*models.Booking, error)

	GetBooking(ctx context.Context, callerID, bookingID string) (*models.Booking, error)
	ListConsumerBookings(ctx context.Context, consumerID string) ([]models.Booking, error)

	// ReconcileOccurrence settles confirmed bookings once the occurrence is over.
	ReconcileOccurrence(ctx context.Context, occurrenceID string) (*models.ReconcileResult, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Gate        *gate.OccurrenceGate
	Owners      *gate.Ownership
	Bookings    bookingRepo.BookingRepository
	Occurrences occurrenceRepo.OccurrenceRepository
	Notifier    notifier.Notifier
	Clock       utils.Clock
	Logger      *zap.Logger
}

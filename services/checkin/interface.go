package checkin

import (
	"context"
	"time"

	bookingRepo "attendly/database/repository/booking"
	checkinRepo "attendly/database/repository/checkin"
	occurrenceRepo "attendly/database/repository/occurrence"
	"attendly/models"
	"attendly/services/gate"
	"attendly/services/notifier"
	"attendly/utils"

	"go.uber.org/zap"
)

// CheckInService issues check-in windows and validates check-in attempts. It is
// the only path that sets a check-in timestamp apart from provider overrides.
type CheckInService interface {
	OpenWindow(ctx context.Context, callerID, occurrenceID string, req models.OpenWindowRequest) (*models.OpenWindowResponse, error)
	CheckIn(ctx context.Context, consumerID, occurrenceID, code string) (*models.Booking, error)
	ListWindows(ctx context.Context, callerID, occurrenceID string) ([]models.CheckInWindow, error)
}

// DefaultCheckInService implements CheckInService.
type DefaultCheckInService struct {
	Gate        *gate.OccurrenceGate
	Owners      *gate.Ownership
	Windows     checkinRepo.CheckInRepository
	Bookings    bookingRepo.BookingRepository
	Occurrences occurrenceRepo.OccurrenceRepository
	Notifier    notifier.Notifier
	Clock       utils.Clock
	DefaultTTL  time.Duration
	MaxTTL      time.Duration
	Logger      *zap.Logger
}

package occurrence

import (
	"context"
	"time"

	"attendly/database/repository"
	bookingRepo "attendly/database/repository/booking"
	locationRepo "attendly/database/repository/location"
	occurrenceRepo "attendly/database/repository/occurrence"
	offeringRepo "attendly/database/repository/offering"
	"attendly/models"
	"attendly/services/gate"
	"attendly/services/notifier"
	"attendly/services/tasks"
	"attendly/utils"

	"go.uber.org/zap"
)

// OccurrenceService owns locations, offerings and the occurrence store.
type OccurrenceService interface {
	CreateLocation(ctx context.Context, callerID string, req models.CreateLocationRequest) (*models.Location, error)
	CreateOffering(ctx context.Context, callerID string, req models.CreateOfferingRequest) (*models.Offering, error)
	CreateOccurrence(ctx context.Context, callerID string, req models.CreateOccurrenceRequest) (*models.Occurrence, error)
	UpdateOccurrence(ctx context.Context, callerID, occurrenceID string, req models.UpdateOccurrenceRequest) (*models.Occurrence, error)
	GetOccurrence(ctx context.Context, occurrenceID string) (*models.OccurrenceView, error)
	// Insert stores a fully built occurrence, failing with an Overlap error when
	// it collides with another occurrence at the same location.
	Insert(ctx context.Context, occ *models.Occurrence) error
}

// DefaultOccurrenceService implements OccurrenceService.
type DefaultOccurrenceService struct {
	Tx          repository.Transactor
	Gate        *gate.OccurrenceGate
	Owners      *gate.Ownership
	Locations   locationRepo.LocationRepository
	Offerings   offeringRepo.OfferingRepository
	Occurrences occurrenceRepo.OccurrenceRepository
	Bookings    bookingRepo.BookingRepository
	Tasks       tasks.Enqueuer
	Notifier    notifier.Notifier
	Clock       utils.Clock
	// ReconcileGrace is the delay after an occurrence ends before its bookings
	// are settled.
	ReconcileGrace time.Duration
	Logger         *zap.Logger
}

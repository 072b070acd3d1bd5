// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"

	"attendly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// Update writes b when the stored revision equals b.Revision, then increments
	// the revision on both sides.
	Update(ctx context.Context, b *models.Booking) error
	CountActive(ctx context.Context, occurrenceID string) (int, error)
	// FindHeldByConsumer returns the consumer's non-cancelled booking for the
	// occurrence, no_show included, or repository.ErrNotFound.
	FindHeldByConsumer(ctx context.Context, occurrenceID, consumerID string) (*models.Booking, error)
	ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.Booking, error)
	ListByConsumer(ctx context.Context, consumerID string) ([]models.Booking, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}

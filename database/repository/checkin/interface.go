// File: database/repository/checkin/interface.go
package checkinRepo

import (
	"context"

	"attendly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type CheckInRepository interface {
	Create(ctx context.Context, w *models.CheckInWindow) error
	GetByID(ctx context.Context, id string) (*models.CheckInWindow, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.CheckInWindow, error)
	// IncrementUses consumes one use when the stored counter still equals
	// expectedUses.
	IncrementUses(ctx context.Context, id string, expectedUses int) error
	ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.CheckInWindow, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoCheckInRepo struct {
	coll *mongo.Collection
}

// NewMongoCheckInRepo constructs a new MongoDB CheckInRepository.
func NewMongoCheckInRepo(db *mongo.Database) CheckInRepository {
	return &mongoCheckInRepo{
		coll: db.Collection("checkin_windows"),
	}
}

// File: database/repository/occurrence/interface.go
package occurrenceRepo

import (
	"context"
	"time"

	"attendly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type OccurrenceRepository interface {
	Create(ctx context.Context, occ *models.Occurrence) error
	GetByID(ctx context.Context, id string) (*models.Occurrence, error)
	// Update replaces the editable fields when the stored version equals
	// occ.Version, then increments the version on both sides.
	Update(ctx context.Context, occ *models.Occurrence) error
	// Bump increments the version when it equals expectedVersion. Inside a
	// transaction it makes concurrent writers of one occurrence conflict.
	Bump(ctx context.Context, id string, expectedVersion int) error
	FindOverlapping(ctx context.Context, locationID string, start, end time.Time, excludeID string) ([]models.Occurrence, error)
	ListByOffering(ctx context.Context, offeringID string) ([]models.Occurrence, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoOccurrenceRepo struct {
	coll *mongo.Collection
}

// NewMongoOccurrenceRepo constructs a new MongoDB OccurrenceRepository.
func NewMongoOccurrenceRepo(db *mongo.Database) OccurrenceRepository {
	return &mongoOccurrenceRepo{
		coll: db.Collection("occurrences"),
	}
}

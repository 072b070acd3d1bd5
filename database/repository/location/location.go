// File: database/repository/location/location.go
package locationRepo

import (
	"context"
	"fmt"
	"time"

	"attendly/database/repository"
	"attendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LocationRepository interface {
	Create(ctx context.Context, loc *models.Location) error
	GetByID(ctx context.Context, id string) (*models.Location, error)
	// Touch increments the location version. Occurrence inserts touch their
	// location inside the transaction so two overlapping inserts cannot both commit.
	Touch(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoLocationRepo struct {
	coll *mongo.Collection
}

// NewMongoLocationRepo constructs a new MongoDB LocationRepository.
func NewMongoLocationRepo(db *mongo.Database) LocationRepository {
	return &mongoLocationRepo{coll: db.Collection("locations")}
}

func (r *mongoLocationRepo) Create(ctx context.Context, loc *models.Location) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, loc); err != nil {
		return fmt.Errorf("insert location failed: %w", err)
	}
	return nil
}

func (r *mongoLocationRepo) GetByID(ctx context.Context, id string) (*models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var loc models.Location
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&loc); err != nil {
		return nil, repository.Wrap(err)
	}
	return &loc, nil
}

func (r *mongoLocationRepo) Touch(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"version": 1}})
	if err != nil {
		return fmt.Errorf("touch location failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoLocationRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}},
			Options: options.Index().SetName("provider_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create location indexes: %w", err)
	}
	return nil
}

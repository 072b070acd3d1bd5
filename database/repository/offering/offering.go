// File: database/repository/offering/offering.go
package offeringRepo

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

type OfferingRepository interface {
	Create(ctx context.Context, o *models.Offering) error
	GetByID(ctx context.Context, id string) (*models.Offering, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoOfferingRepo struct {
	coll *mongo.Collection
}

// NewMongoOfferingRepo constructs a new MongoDB OfferingRepository.
func NewMongoOfferingRepo(db *mongo.Database) OfferingRepository {
	return &mongoOfferingRepo{coll: db.Collection("offerings")}
}

func (r *mongoOfferingRepo) Create(ctx context.Context, o *models.Offering) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert offering failed: %w", err)
	}
	return nil
}

func (r *mongoOfferingRepo) GetByID(ctx context.Context, id string) (*models.Offering, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o models.Offering
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&o); err != nil {
		return nil, repository.Wrap(err)
	}
	return &o, nil
}

func (r *mongoOfferingRepo) EnsureIndexes(ctx context.Context) error {
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
		return fmt.Errorf("failed to create offering indexes: %w", err)
	}
	return nil
}

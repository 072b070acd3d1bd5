// File: database/repository/checkin/crud.go
package checkinRepo

import (
	"context"
	"fmt"
	"time"

	"attendly/database/repository"
	"attendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoCheckInRepo) Create(ctx context.Context, w *models.CheckInWindow) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, w); err != nil {
		return fmt.Errorf("insert check-in window failed: %w", err)
	}
	return nil
}

func (r *mongoCheckInRepo) GetByID(ctx context.Context, id string) (*models.CheckInWindow, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoCheckInRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.CheckInWindow, error) {
	return r.findOne(ctx, bson.M{"tokenHash": tokenHash})
}

func (r *mongoCheckInRepo) findOne(ctx context.Context, filter bson.M) (*models.CheckInWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var w models.CheckInWindow
	if err := r.coll.FindOne(ctx, filter).Decode(&w); err != nil {
		return nil, repository.Wrap(err)
	}
	return &w, nil
}

func (r *mongoCheckInRepo) IncrementUses(ctx context.Context, id string, expectedUses int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "uses": expectedUses},
		bson.M{"$inc": bson.M{"uses": 1}},
	)
	if err != nil {
		return fmt.Errorf("increment window uses failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrVersionConflict
	}
	return nil
}

func (r *mongoCheckInRepo) ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.CheckInWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "issuedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"occurrenceId": occurrenceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-in windows: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]models.CheckInWindow, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding check-in windows: %w", err)
	}
	return out, nil
}

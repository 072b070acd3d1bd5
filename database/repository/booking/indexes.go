// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"attendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (r *mongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Capacity count and duplicate probe.
		{
			Keys:    bson.D{{Key: "occurrenceId", Value: 1}, {Key: "status", Value: 1}, {Key: "consumerId", Value: 1}},
			Options: options.Index().SetName("occurrence_status_consumer_idx"),
		},
		// One held booking per consumer and occurrence. Backs the duplicate check
		// in the reserve path.
		{
			Keys: bson.D{{Key: "occurrenceId", Value: 1}, {Key: "consumerId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_held_consumer_idx").
				SetPartialFilterExpression(bson.M{"status": bson.M{"$in": models.HeldStatuses()}}),
		},
		{
			Keys:    bson.D{{Key: "consumerId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("consumer_created_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

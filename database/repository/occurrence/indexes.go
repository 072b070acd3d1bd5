// FILE: database/repository/occurrence/indexes.go
package occurrenceRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the occurrences collection.
func (r *mongoOccurrenceRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Overlap probe: locationId equality, then range on start/end.
		{
			Keys:    bson.D{{Key: "locationId", Value: 1}, {Key: "start", Value: 1}, {Key: "end", Value: 1}},
			Options: options.Index().SetName("location_start_end_idx"),
		},
		{
			Keys:    bson.D{{Key: "offeringId", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("offering_start_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create occurrence indexes: %w", err)
	}
	return nil
}

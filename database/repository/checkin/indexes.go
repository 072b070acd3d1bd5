// FILE: database/repository/checkin/indexes.go
package checkinRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// expiredRetention keeps spent windows around for a week so a late scan still
// reports "expired" rather than "not recognised".
const expiredRetention = 7 * 24 * time.Hour

// EnsureIndexes creates the necessary indexes on the checkin_windows collection.
func (r *mongoCheckInRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_token_hash"),
		},
		{
			Keys:    bson.D{{Key: "occurrenceId", Value: 1}, {Key: "issuedAt", Value: -1}},
			Options: options.Index().SetName("occurrence_issued_idx"),
		},
		{
			Keys: bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(int32(expiredRetention.Seconds())).
				SetName("expires_ttl"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create check-in window indexes: %w", err)
	}
	return nil
}

// File: database/repository/occurrence/crud.go
package occurrenceRepo

import (
	"context"
	"fmt"
	"time"

	"attendly/database/repository"
	"attendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoOccurrenceRepo) Create(ctx context.Context, occ *models.Occurrence) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, occ); err != nil {
		return fmt.Errorf("insert occurrence failed: %w", err)
	}
	return nil
}

func (r *mongoOccurrenceRepo) GetByID(ctx context.Context, id string) (*models.Occurrence, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var occ models.Occurrence
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&occ); err != nil {
		return nil, repository.Wrap(err)
	}
	return &occ, nil
}

func (r *mongoOccurrenceRepo) Update(ctx context.Context, occ *models.Occurrence) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": occ.ID, "version": occ.Version}
	update := bson.M{
		"$set": bson.M{
			"start":       occ.Start,
			"end":         occ.End,
			"capacity":    occ.Capacity,
			"allowedTags": occ.AllowedTags,
			"geoOverride": occ.GeoOverride,
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update occurrence failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrVersionConflict
	}
	occ.Version++
	return nil
}

func (r *mongoOccurrenceRepo) Bump(ctx context.Context, id string, expectedVersion int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "version": expectedVersion},
		bson.M{"$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return fmt.Errorf("bump occurrence version failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrVersionConflict
	}
	return nil
}

// FindOverlapping returns occurrences at the location whose window intersects [start, end).
func (r *mongoOccurrenceRepo) FindOverlapping(ctx context.Context, locationID string, start, end time.Time, excludeID string) ([]models.Occurrence, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"locationId": locationID,
		"start":      bson.M{"$lt": end},
		"end":        bson.M{"$gt": start},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding overlapping occurrences: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Occurrence
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding occurrences: %w", err)
	}
	return out, nil
}

func (r *mongoOccurrenceRepo) ListByOffering(ctx context.Context, offeringID string) ([]models.Occurrence, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"offeringId": offeringID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occurrences: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Occurrence
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding occurrences: %w", err)
	}
	return out, nil
}

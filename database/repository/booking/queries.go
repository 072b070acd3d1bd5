// File: database/repository/booking/queries.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"attendly/database/repository"
	"attendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func activeFilter(occurrenceID string) bson.M {
	return bson.M{
		"occurrenceId": occurrenceID,
		"status":       bson.M{"$in": models.ActiveStatuses()},
	}
}

// CountActive counts bookings that hold a seat. Inside a transaction it reads the
// transaction's snapshot.
func (r *mongoBookingRepo) CountActive(ctx context.Context, occurrenceID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, activeFilter(occurrenceID))
	if err != nil {
		return 0, fmt.Errorf("count active bookings failed: %w", err)
	}
	return int(n), nil
}

func (r *mongoBookingRepo) FindHeldByConsumer(ctx context.Context, occurrenceID, consumerID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"occurrenceId": occurrenceID,
		"consumerId":   consumerID,
		"status":       bson.M{"$ne": models.BookingCancelled},
	}

	var b models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		return nil, repository.Wrap(err)
	}
	return &b, nil
}

func (r *mongoBookingRepo) ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"occurrenceId": occurrenceID})
}

func (r *mongoBookingRepo) ListByConsumer(ctx context.Context, consumerID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"consumerId": consumerID})
}

func (r *mongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]models.Booking, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return out, nil
}

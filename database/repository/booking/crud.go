// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"attendly/database/repository"
	"attendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert booking failed: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		return nil, repository.Wrap(err)
	}
	return &b, nil
}

func (r *mongoBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":          b.Status,
		"paymentStatus":   b.PaymentStatus,
		"checkedInAt":     b.CheckedInAt,
		"checkInWindowId": b.CheckInWindowID,
		"updatedAt":       b.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": b.ID, "revision": b.Revision},
		bson.M{"$set": set, "$inc": bson.M{"revision": 1}},
	)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrVersionConflict
	}
	b.Revision++
	return nil
}

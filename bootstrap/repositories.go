// Package bootstrap wires repositories and services from configuration.
package bootstrap

import (
	"context"

	"attendly/database/repository"
	bookingRepo "attendly/database/repository/booking"
	checkinRepo "attendly/database/repository/checkin"
	locationRepo "attendly/database/repository/location"
	"attendly/database/repository/memory"
	occurrenceRepo "attendly/database/repository/occurrence"
	offeringRepo "attendly/database/repository/offering"

	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories is one storage backend's full set of repositories.
type Repositories struct {
	Tx          repository.Transactor
	Locations   locationRepo.LocationRepository
	Offerings   offeringRepo.OfferingRepository
	Occurrences occurrenceRepo.OccurrenceRepository
	Bookings    bookingRepo.BookingRepository
	CheckIns    checkinRepo.CheckInRepository
}

func MongoRepositories(client *mongo.Client, db *mongo.Database) Repositories {
	return Repositories{
		Tx:          repository.NewMongoTransactor(client),
		Locations:   locationRepo.NewMongoLocationRepo(db),
		Offerings:   offeringRepo.NewMongoOfferingRepo(db),
		Occurrences: occurrenceRepo.NewMongoOccurrenceRepo(db),
		Bookings:    bookingRepo.NewMongoBookingRepo(db),
		CheckIns:    checkinRepo.NewMongoCheckInRepo(db),
	}
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Tx:          store,
		Locations:   store.Locations(),
		Offerings:   store.Offerings(),
		Occurrences: store.Occurrences(),
		Bookings:    store.Bookings(),
		CheckIns:    store.CheckIns(),
	}
}

// EnsureIndexes creates every collection's indexes.
func (r Repositories) EnsureIndexes(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		r.Locations.EnsureIndexes,
		r.Offerings.EnsureIndexes,
		r.Occurrences.EnsureIndexes,
		r.Bookings.EnsureIndexes,
		r.CheckIns.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}

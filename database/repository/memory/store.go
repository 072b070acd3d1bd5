// Package memory is a single-process store that satisfies every repository
// contract and the Transactor. It backs STORE_DRIVER=memory and the tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"attendly/database/repository"
	bookingRepo "attendly/database/repository/booking"
	checkinRepo "attendly/database/repository/checkin"
	locationRepo "attendly/database/repository/location"
	occurrenceRepo "attendly/database/repository/occurrence"
	offeringRepo "attendly/database/repository/offering"
	"attendly/models"
)

type txKey struct{}

// Store keeps every entity in maps. Transactions are serialized and roll back by
// restoring a snapshot of the maps. While a transaction is open, readers outside
// it see that snapshot, so uncommitted rows are never visible.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	committed *snapshot

	locations   map[string]models.Location
	offerings   map[string]models.Offering
	occurrences map[string]models.Occurrence
	bookings    map[string]models.Booking
	windows     map[string]models.CheckInWindow

	failMu      sync.Mutex
	failCommits int
	failErr     error
}

func NewStore() *Store {
	return &Store{
		locations:   make(map[string]models.Location),
		offerings:   make(map[string]models.Offering),
		occurrences: make(map[string]models.Occurrence),
		bookings:    make(map[string]models.Booking),
		windows:     make(map[string]models.CheckInWindow),
	}
}

var _ repository.Transactor = (*Store)(nil)

func (s *Store) Locations() locationRepo.LocationRepository       { return locationStore{s} }
func (s *Store) Offerings() offeringRepo.OfferingRepository       { return offeringStore{s} }
func (s *Store) Occurrences() occurrenceRepo.OccurrenceRepository { return occurrenceStore{s} }
func (s *Store) Bookings() bookingRepo.BookingRepository          { return bookingStore{s} }
func (s *Store) CheckIns() checkinRepo.CheckInRepository          { return checkinStore{s} }

// FailCommits makes the next n transactions roll back with err after fn succeeds,
// the way a store reports a write conflict at commit.
func (s *Store) FailCommits(n int, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failCommits = n
	s.failErr = err
}

func (s *Store) commitFailure() error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if s.failCommits <= 0 {
		return nil
	}
	s.failCommits--
	return s.failErr
}

type snapshot struct {
	locations   map[string]models.Location
	offerings   map[string]models.Offering
	occurrences map[string]models.Occurrence
	bookings    map[string]models.Booking
	windows     map[string]models.CheckInWindow
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		locations:   maps.Clone(s.locations),
		offerings:   maps.Clone(s.offerings),
		occurrences: maps.Clone(s.occurrences),
		bookings:    maps.Clone(s.bookings),
		windows:     maps.Clone(s.windows),
	}
}

func (s *Store) live() *snapshot {
	return &snapshot{
		locations:   s.locations,
		offerings:   s.offerings,
		occurrences: s.occurrences,
		bookings:    s.bookings,
		windows:     s.windows,
	}
}

func (s *Store) begin() snapshot {
	snap := s.snapshot()
	s.mu.Lock()
	s.committed = &snap
	s.mu.Unlock()
	return snap
}

// end publishes the transaction's writes, or puts snap back when rollback is set.
func (s *Store) end(snap snapshot, rollback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = nil
	if !rollback {
		return
	}
	s.locations = snap.locations
	s.offerings = snap.offerings
	s.occurrences = snap.occurrences
	s.bookings = snap.bookings
	s.windows = snap.windows
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// WithTransaction runs fn with every other transaction and out-of-transaction
// write excluded. Nested calls join the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.begin()
	err := fn(context.WithValue(ctx, txKey{}, true))
	if err == nil {
		err = s.commitFailure()
	}
	s.end(snap, err != nil)
	return err
}

// write applies a single mutation. Outside a transaction it still waits for the
// transaction lock so a rollback cannot discard it.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// read hands fn the transaction's own view inside a transaction and the last
// committed view everywhere else.
func (s *Store) read(ctx context.Context, fn func(v *snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.committed != nil && !inTx(ctx) {
		fn(s.committed)
		return
	}
	fn(s.live())
}

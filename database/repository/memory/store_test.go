package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"attendly/database/repository"
	"attendly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

func seedBooking(id, occID, consumer string, status models.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:            id,
		OccurrenceID:  occID,
		ConsumerID:    consumer,
		Status:        status,
		PaymentStatus: models.PaymentNone,
		CreatedAt:     t0,
		UpdatedAt:     t0,
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Bookings().Create(ctx, seedBooking("b1", "o1", "c1", models.BookingPending)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Bookings().GetByID(ctx, "b1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFailCommitsRollsBack(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.FailCommits(1, repository.ErrVersionConflict)

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		return s.Bookings().Create(ctx, seedBooking("b1", "o1", "c1", models.BookingPending))
	})
	require.ErrorIs(t, err, repository.ErrVersionConflict)
	n, _ := s.Bookings().CountActive(ctx, "o1")
	assert.Zero(t, n)

	err = s.WithTransaction(ctx, func(ctx context.Context) error {
		return s.Bookings().Create(ctx, seedBooking("b1", "o1", "c1", models.BookingPending))
	})
	require.NoError(t, err)
	n, _ = s.Bookings().CountActive(ctx, "o1")
	assert.Equal(t, 1, n)
}

func TestBookingUpdateChecksRevision(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Bookings()
	require.NoError(t, repo.Create(ctx, seedBooking("b1", "o1", "c1", models.BookingPending)))

	b, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	stale := *b

	b.Status = models.BookingConfirmed
	require.NoError(t, repo.Update(ctx, b))
	assert.Equal(t, 1, b.Revision)

	stale.Status = models.BookingCancelled
	assert.ErrorIs(t, repo.Update(ctx, &stale), repository.ErrVersionConflict)

	got, _ := repo.GetByID(ctx, "b1")
	assert.Equal(t, models.BookingConfirmed, got.Status)
}

func TestCountActiveAndDuplicateProbe(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Bookings()
	require.NoError(t, repo.Create(ctx, seedBooking("b1", "o1", "c1", models.BookingConfirmed)))
	require.NoError(t, repo.Create(ctx, seedBooking("b2", "o1", "c2", models.BookingCancelled)))
	require.NoError(t, repo.Create(ctx, seedBooking("b3", "o1", "c3", models.BookingCompleted)))
	require.NoError(t, repo.Create(ctx, seedBooking("b4", "o1", "c4", models.BookingNoShow)))

	n, err := repo.CountActive(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.FindHeldByConsumer(ctx, "o1", "c2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	got, err := repo.FindHeldByConsumer(ctx, "o1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)

	got, err = repo.FindHeldByConsumer(ctx, "o1", "c4")
	require.NoError(t, err, "a no_show is still held")
	assert.Equal(t, "b4", got.ID)
}

func TestReadsOutsideTransactionSeeCommittedState(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Bookings()
	require.NoError(t, repo.Create(ctx, seedBooking("b0", "o1", "c0", models.BookingConfirmed)))

	written := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithTransaction(ctx, func(tx context.Context) error {
			if err := repo.Create(tx, seedBooking("b1", "o1", "c1", models.BookingPending)); err != nil {
				return err
			}
			if n, _ := repo.CountActive(tx, "o1"); n != 2 {
				return errors.New("transaction does not see its own write")
			}
			close(written)
			<-release
			return errors.New("rolled back")
		})
	}()

	<-written
	n, err := repo.CountActive(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "uncommitted booking must not be counted")
	_, err = repo.GetByID(ctx, "b1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	all, err := repo.ListByOccurrence(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	close(release)
	require.EqualError(t, <-done, "rolled back")
	n, _ = repo.CountActive(ctx, "o1")
	assert.Equal(t, 1, n)
}

func TestCommittedWritesBecomeVisible(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Bookings()

	require.NoError(t, s.WithTransaction(ctx, func(tx context.Context) error {
		return repo.Create(tx, seedBooking("b1", "o1", "c1", models.BookingPending))
	}))
	got, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)
}

func TestFindOverlappingIsHalfOpen(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.Occurrences()
	require.NoError(t, repo.Create(ctx, &models.Occurrence{ID: "o1", LocationID: "l1", Start: t0, End: t0.Add(time.Hour), Capacity: 5}))

	adjacent, err := repo.FindOverlapping(ctx, "l1", t0.Add(time.Hour), t0.Add(2*time.Hour), "")
	require.NoError(t, err)
	assert.Empty(t, adjacent)

	hit, err := repo.FindOverlapping(ctx, "l1", t0.Add(30*time.Minute), t0.Add(90*time.Minute), "")
	require.NoError(t, err)
	assert.Len(t, hit, 1)

	self, err := repo.FindOverlapping(ctx, "l1", t0, t0.Add(time.Hour), "o1")
	require.NoError(t, err)
	assert.Empty(t, self)

	other, err := repo.FindOverlapping(ctx, "l2", t0, t0.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestIncrementUsesIsConditional(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	repo := s.CheckIns()
	require.NoError(t, repo.Create(ctx, &models.CheckInWindow{ID: "w1", OccurrenceID: "o1", TokenHash: "h", ExpiresAt: t0}))

	require.NoError(t, repo.IncrementUses(ctx, "w1", 0))
	assert.ErrorIs(t, repo.IncrementUses(ctx, "w1", 0), repository.ErrVersionConflict)

	w, err := repo.GetByTokenHash(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, 1, w.Uses)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Occurrences().Create(ctx, &models.Occurrence{ID: "o1", AllowedTags: []string{"a"}}))

	got, err := s.Occurrences().GetByID(ctx, "o1")
	require.NoError(t, err)
	got.AllowedTags[0] = "mutated"
	got.Capacity = 99

	again, _ := s.Occurrences().GetByID(ctx, "o1")
	assert.Equal(t, []string{"a"}, again.AllowedTags)
	assert.Zero(t, again.Capacity)
}

package checkin_test

import (
	"context"
	"testing"
	"time"

	"attendly/apperror"
	"attendly/bootstrap"
	"attendly/models"
	"attendly/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const provider = "provider-1"

var now = time.Date(2026, 3, 2, 8, 50, 0, 0, time.UTC)

type fixture struct {
	svc   *bootstrap.Services
	clock *utils.FixedClock
	occA  *models.Occurrence
	occB  *models.Occurrence
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := utils.NewFixedClock(now)
	svc, _ := bootstrap.NewMemory(clock)

	off, err := svc.Occurrence.CreateOffering(ctx, provider, models.CreateOfferingRequest{Title: "Spin"})
	require.NoError(t, err)
	mk := func(start time.Time) *models.Occurrence {
		occ, err := svc.Occurrence.CreateOccurrence(ctx, provider, models.CreateOccurrenceRequest{
			OfferingID: off.ID,
			Start:      start,
			End:        start.Add(time.Hour),
			Capacity:   10,
		})
		require.NoError(t, err)
		return occ
	}
	return &fixture{
		svc:   svc,
		clock: clock,
		occA:  mk(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		occB:  mk(time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)),
	}
}

func (f *fixture) open(t *testing.T, occ *models.Occurrence, req models.OpenWindowRequest) *models.OpenWindowResponse {
	t.Helper()
	w, err := f.svc.CheckIn.OpenWindow(context.Background(), provider, occ.ID, req)
	require.NoError(t, err)
	return w
}

func (f *fixture) reserve(t *testing.T, consumer string, occ *models.Occurrence) *models.Booking {
	t.Helper()
	b, err := f.svc.Booking.Reserve(context.Background(), consumer, occ.ID)
	require.NoError(t, err)
	return b
}

func TestOpenWindowDefaults(t *testing.T) {
	f := setup(t)
	w := f.open(t, f.occA, models.OpenWindowRequest{})

	assert.Equal(t, now.Add(10*time.Minute), w.ExpiresAt)
	assert.Equal(t, f.occA.ID, w.OccurrenceID)
	assert.GreaterOrEqual(t, len(w.Token), 43)
	assert.Nil(t, w.MaxUses)
	require.Greater(t, len(w.QRCode), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), w.QRCode[:8])

	other := f.open(t, f.occA, models.OpenWindowRequest{})
	assert.NotEqual(t, w.Token, other.Token)
}

func TestOpenWindowRequiresOwnership(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CheckIn.OpenWindow(context.Background(), "someone-else", f.occA.ID, models.OpenWindowRequest{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.CheckIn.OpenWindow(context.Background(), provider, "missing", models.OpenWindowRequest{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestOpenWindowValidation(t *testing.T) {
	f := setup(t)
	zero := 0
	cases := []struct {
		name string
		req  models.OpenWindowRequest
	}{
		{"negative ttl", models.OpenWindowRequest{TTLMinutes: -1}},
		{"ttl above max", models.OpenWindowRequest{TTLMinutes: 241}},
		{"zero max uses", models.OpenWindowRequest{MaxUses: &zero}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CheckIn.OpenWindow(context.Background(), provider, f.occA.ID, tc.req)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestCheckInPromotesPendingBooking(t *testing.T) {
	f := setup(t)
	b := f.reserve(t, "consumer-a", f.occA)
	w := f.open(t, f.occA, models.OpenWindowRequest{})

	got, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occA.ID, w.Token)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	require.NotNil(t, got.CheckedInAt)
	assert.Equal(t, now, *got.CheckedInAt)
	assert.Equal(t, w.WindowID, got.CheckInWindowID)
}

func TestCheckInUnknownCode(t *testing.T) {
	f := setup(t)
	f.reserve(t, "consumer-a", f.occA)
	_, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occA.ID, "not-a-real-token")
	assert.ErrorIs(t, err, apperror.ErrWindowNotFound)
}

func TestCheckInExpiredWindow(t *testing.T) {
	f := setup(t)
	f.reserve(t, "consumer-a", f.occA)
	w := f.open(t, f.occA, models.OpenWindowRequest{TTLMinutes: 5})

	f.clock.Advance(5 * time.Minute)
	_, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occA.ID, w.Token)
	assert.ErrorIs(t, err, apperror.ErrWindowExpired)
}

func TestCheckInOccurrenceMismatch(t *testing.T) {
	f := setup(t)
	f.reserve(t, "consumer-a", f.occB)
	w := f.open(t, f.occA, models.OpenWindowRequest{})

	_, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occB.ID, w.Token)
	assert.ErrorIs(t, err, apperror.ErrOccurrenceMismatch)

	b, err := f.svc.Repos.Bookings.FindHeldByConsumer(context.Background(), f.occB.ID, "consumer-a")
	require.NoError(t, err)
	assert.False(t, b.CheckedIn())
}

func TestCheckInMismatchReportedBeforeExpiry(t *testing.T) {
	f := setup(t)
	w := f.open(t, f.occA, models.OpenWindowRequest{TTLMinutes: 1})
	f.clock.Advance(time.Hour)

	_, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occB.ID, w.Token)
	assert.ErrorIs(t, err, apperror.ErrOccurrenceMismatch)
}

func TestCheckInWithoutBooking(t *testing.T) {
	f := setup(t)
	w := f.open(t, f.occA, models.OpenWindowRequest{})
	_, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occA.ID, w.Token)
	assert.ErrorIs(t, err, apperror.ErrNoActiveBooking)

	b := f.reserve(t, "consumer-b", f.occA)
	_, err = f.svc.Booking.Cancel(context.Background(), "consumer-b", b.ID)
	require.NoError(t, err)
	_, err = f.svc.CheckIn.CheckIn(context.Background(), "consumer-b", f.occA.ID, w.Token)
	assert.ErrorIs(t, err, apperror.ErrNoActiveBooking)
}

func TestCheckInMaxUses(t *testing.T) {
	f := setup(t)
	one := 1
	f.reserve(t, "consumer-a", f.occA)
	f.reserve(t, "consumer-b", f.occA)
	w := f.open(t, f.occA, models.OpenWindowRequest{MaxUses: &one})

	_, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occA.ID, w.Token)
	require.NoError(t, err)
	_, err = f.svc.CheckIn.CheckIn(context.Background(), "consumer-b", f.occA.ID, w.Token)
	assert.ErrorIs(t, err, apperror.ErrWindowExhausted)
}

func TestRepeatCheckInDoesNotConsumeAUse(t *testing.T) {
	f := setup(t)
	two := 2
	f.reserve(t, "consumer-a", f.occA)
	f.reserve(t, "consumer-b", f.occA)
	w := f.open(t, f.occA, models.OpenWindowRequest{MaxUses: &two})
	ctx := context.Background()

	first, err := f.svc.CheckIn.CheckIn(ctx, "consumer-a", f.occA.ID, w.Token)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	again, err := f.svc.CheckIn.CheckIn(ctx, "consumer-a", f.occA.ID, w.Token)
	require.NoError(t, err)
	assert.Equal(t, *first.CheckedInAt, *again.CheckedInAt)

	_, err = f.svc.CheckIn.CheckIn(ctx, "consumer-b", f.occA.ID, w.Token)
	require.NoError(t, err)

	windows, err := f.svc.CheckIn.ListWindows(ctx, provider, f.occA.ID)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, 2, windows[0].Uses)
}

func TestReissuedWindowsCoexist(t *testing.T) {
	f := setup(t)
	f.reserve(t, "consumer-a", f.occA)
	f.reserve(t, "consumer-b", f.occA)
	old := f.open(t, f.occA, models.OpenWindowRequest{})
	fresh := f.open(t, f.occA, models.OpenWindowRequest{})

	_, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occA.ID, old.Token)
	require.NoError(t, err)
	_, err = f.svc.CheckIn.CheckIn(context.Background(), "consumer-b", f.occA.ID, fresh.Token)
	require.NoError(t, err)
}

func TestCheckInEmptyCode(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CheckIn.CheckIn(context.Background(), "consumer-a", f.occA.ID, "  ")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"attendly/bootstrap"
	"attendly/models"
	"attendly/services/tasks"
	"attendly/utils"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleReconcileTask(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	clock := utils.NewFixedClock(start.Add(-2 * time.Hour))
	svc, _ := bootstrap.NewMemory(clock)

	off, err := svc.Occurrence.CreateOffering(ctx, "provider-1", models.CreateOfferingRequest{Title: "Spin"})
	require.NoError(t, err)
	occ, err := svc.Occurrence.CreateOccurrence(ctx, "provider-1", models.CreateOccurrenceRequest{
		OfferingID: off.ID,
		Start:      start,
		End:        start.Add(45 * time.Minute),
		Capacity:   4,
	})
	require.NoError(t, err)

	b, err := svc.Booking.Reserve(ctx, "consumer-a", occ.ID)
	require.NoError(t, err)
	_, err = svc.Booking.Confirm(ctx, "provider-1", b.ID)
	require.NoError(t, err)

	clock.Set(occ.End.Add(time.Hour))
	task, _, err := tasks.NewReconcileTask(occ.ID, occ.End)
	require.NoError(t, err)

	handler := HandleReconcileTask(svc.Booking, zap.NewNop())
	require.NoError(t, handler(ctx, task))

	got, err := svc.Booking.GetBooking(ctx, "consumer-a", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingNoShow, got.Status)
}

func TestHandleReconcileTaskSkipsRetry(t *testing.T) {
	svc, _ := bootstrap.NewMemory(utils.NewFixedClock(time.Now().UTC()))
	handler := HandleReconcileTask(svc.Booking, zap.NewNop())

	bad := asynq.NewTask(tasks.TypeReconcileOccurrence, []byte("{"))
	err := handler(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	gone, _, err := tasks.NewReconcileTask("no-such-occurrence", time.Now())
	require.NoError(t, err)
	err = handler(context.Background(), gone)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

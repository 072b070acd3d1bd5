package notifier

import (
	"context"
	"testing"
	"time"

	"attendly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(occID, bookingID string, rev int) models.ChangeEvent {
	return models.ChangeEvent{
		Op:           models.ChangeUpdate,
		Table:        models.TableBookings,
		OccurrenceID: occID,
		Booking:      &models.Booking{ID: bookingID, OccurrenceID: occID, Revision: rev},
	}
}

func TestHubDeliversOnlyMatchingOccurrence(t *testing.T) {
	h := NewHub(nil)
	ctx := context.Background()

	ch, cancel, err := h.Subscribe(ctx, "o1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, h.Publish(ctx, event("o2", "b9", 0)))
	require.NoError(t, h.Publish(ctx, event("o1", "b1", 0)))

	select {
	case got := <-ch:
		assert.Equal(t, "b1", got.Booking.ID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	assert.Empty(t, ch)
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub(nil)
	ch, cancel, err := h.Subscribe(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, h.Subscribers("o1"))

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, h.Subscribers("o1"))
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := NewHub(nil)
	ctx := context.Background()
	ch, cancel, err := h.Subscribe(ctx, "o1")
	require.NoError(t, err)
	defer cancel()

	for i := 0; i <= subscriberBuffer; i++ {
		require.NoError(t, h.Publish(ctx, event("o1", "b1", i)))
	}
	assert.Zero(t, h.Subscribers("o1"))

	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)
}

func TestHubContextCancelUnsubscribes(t *testing.T) {
	h := NewHub(nil)
	ctx, stop := context.WithCancel(context.Background())
	ch, _, err := h.Subscribe(ctx, "o1")
	require.NoError(t, err)

	stop()
	require.Eventually(t, func() bool { return h.Subscribers("o1") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-ch
	assert.False(t, open)
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "occurrence:abc:bookings", ChannelName("abc"))
}

package notifier

import (
	"context"

	"attendly/models"
)

// Notifier delivers row-scoped change events for one occurrence at a time.
// Delivery is at-least-once and ordered per publisher.
type Notifier interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
	// Subscribe returns a channel of events for the occurrence and a cancel func
	// that closes it. The subscription is live when Subscribe returns.
	Subscribe(ctx context.Context, occurrenceID string) (<-chan models.ChangeEvent, func(), error)
}

// ChannelName is the pub/sub channel carrying an occurrence's events.
func ChannelName(occurrenceID string) string {
	return "occurrence:" + occurrenceID + ":bookings"
}

// File: services/notifier/redis.go
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"attendly/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisNotifier relays change events through Redis pub/sub so every API
// instance sees writes made by the others.
type RedisNotifier struct {
	Client *redis.Client
	Logger *zap.Logger
}

func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{Client: client, Logger: logger}
}

func (n *RedisNotifier) Publish(ctx context.Context, event models.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := n.Client.Publish(ctx, ChannelName(event.OccurrenceID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, occurrenceID string) (<-chan models.ChangeEvent, func(), error) {
	ps := n.Client.Subscribe(ctx, ChannelName(occurrenceID))
	// Receive blocks until the server confirms the subscription.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", ChannelName(occurrenceID), err)
	}

	out := make(chan models.ChangeEvent, subscriberBuffer)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(done) }) }

	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event models.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					n.Logger.Warn("Discarding malformed change event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- event:
				default:
					n.Logger.Warn("Dropping slow roster subscriber", zap.String("occurrenceID", occurrenceID))
					return
				}
			}
		}
	}()
	return out, cancel, nil
}

package notifier

import (
	"context"
	"sync"

	"attendly/models"

	"go.uber.org/zap"
)

const subscriberBuffer = 64

type subscriber struct {
	ch   chan models.ChangeEvent
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans events out to in-process subscribers. A subscriber whose buffer is
// full is dropped and its channel closed, so a slow reader never stalls writers.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger,
	}
}

func (h *Hub) Publish(_ context.Context, event models.ChangeEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[event.OccurrenceID] {
		select {
		case sub.ch <- event:
		default:
			h.logger.Warn("Dropping slow roster subscriber", zap.String("occurrenceID", event.OccurrenceID))
			delete(h.subs[event.OccurrenceID], sub)
			sub.close()
		}
	}
	if len(h.subs[event.OccurrenceID]) == 0 {
		delete(h.subs, event.OccurrenceID)
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, occurrenceID string) (<-chan models.ChangeEvent, func(), error) {
	sub := &subscriber{ch: make(chan models.ChangeEvent, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[occurrenceID] == nil {
		h.subs[occurrenceID] = make(map[*subscriber]struct{})
	}
	h.subs[occurrenceID][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[occurrenceID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, occurrenceID)
			}
		}
		h.mu.Unlock()
		sub.close()
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return sub.ch, cancel, nil
}

// Subscribers returns the live subscriber count for an occurrence.
func (h *Hub) Subscribers(occurrenceID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[occurrenceID])
}

package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendly/database/repository"
)

// RetryPolicy bounds how often a transient store failure is retried.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// ErrRetriesExhausted wraps the last transient error once the budget is spent.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Do runs fn until it succeeds, returns a non-transient error, or the retry
// budget is spent.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(attempt)
		if err == nil || !repository.IsTransient(err) {
			return err
		}
		if attempt >= p.MaxRetries {
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt+1, err)
		}
		wait := p.Backoff * time.Duration(attempt+1)
		if wait <= 0 {
			continue
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

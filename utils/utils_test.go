package utils

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLockerSerializesOneKey(t *testing.T) {
	l := NewKeyedLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background(), "occ-1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.Len(), "idle keys are dropped")
}

func TestKeyedLockerTimeout(t *testing.T) {
	l := NewKeyedLocker()
	release, err := l.Lock(context.Background(), "occ-1")
	require.NoError(t, err)

	other, err := l.Lock(context.Background(), "occ-2")
	require.NoError(t, err, "different keys do not contend")
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "occ-1")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	release()
	release()
	again, err := l.Lock(context.Background(), "occ-1")
	require.NoError(t, err)
	again()
	assert.Equal(t, 0, l.Len())
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	assert.Equal(t, start, c.Now())
	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())
	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("consumer-7", time.Minute)
	require.NoError(t, err)

	sub, err := ExtractIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "consumer-7", sub)

	_, err = ExtractIDFromToken(token + "x")
	assert.Error(t, err)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}

func TestCheckHealth(t *testing.T) {
	status := CheckHealth(context.Background(), map[string]Pinger{
		"mongo": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("down") },
	})
	assert.True(t, status.Checks["mongo"])
	assert.False(t, status.Checks["redis"])
	assert.Equal(t, status, GetHealthStatus())
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowCounter implements fixed-window counting on Redis keys with a TTL.
// The first hit inside a window creates the key and arms its expiry; the
// window resets itself when the key expires. Keeping the counters in Redis
// rather than process memory makes the limit hold across instances.
type WindowCounter struct {
	client *redis.Client
}

// NewWindowCounter creates a WindowCounter wrapping the given Redis client.
func NewWindowCounter(client *redis.Client) *WindowCounter {
	return &WindowCounter{client: client}
}

// Incr bumps the counter for key and returns the new count together with
// the time left until the window resets.
func (w *WindowCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := w.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("rate counter incr: %w", err)
	}

	if count == 1 {
		if err := w.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("rate counter expire: %w", err)
		}
		return count, window, nil
	}

	ttl, err := w.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// Lost or missing expiry; report a full window rather than a
		// bogus negative retry hint.
		ttl = window
	}
	return count, ttl, nil
}

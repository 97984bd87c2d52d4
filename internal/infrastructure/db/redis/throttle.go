package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle is a fixed-window request counter shared by all API replicas.
// Key format: throttle:<key>:<window index>
type Throttle struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewThrottle allows limit hits per key in each window.
func NewThrottle(client *redis.Client, limit int, window time.Duration) *Throttle {
	if window <= 0 {
		window = 10 * time.Second
	}
	return &Throttle{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow records one hit for key and reports whether it is within the limit.
// On Redis errors it returns true together with the error.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	k := t.key(key, t.now())

	var hits *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		hits = p.Incr(ctx, k)
		p.Expire(ctx, k, t.window)
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("throttle: %w", err)
	}
	return hits.Val() <= t.limit, nil
}

func (t *Throttle) key(key string, now time.Time) string {
	return fmt.Sprintf("throttle:%s:%d", key, now.UnixNano()/int64(t.window))
}

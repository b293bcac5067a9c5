package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter keeps window counters in process. Counts are per instance.
type MemoryLimiter struct {
	c   *gocache.Cache
	now func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{c: gocache.New(time.Minute, time.Minute), now: time.Now}
}

func (l *MemoryLimiter) AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := l.now().UTC()
	k := windowKey("", key, now, window)
	ttl := now.Truncate(window).Add(window).Sub(now)

	var hits int64
	for {
		if err := l.c.Add(k, int64(1), ttl); err == nil {
			hits = 1
			break
		}
		n, err := l.c.IncrementInt64(k, 1)
		if err == nil {
			hits = n
			break
		}
		// expired between Add and Increment; start over
	}
	return result(hits, int64(limit), ttl, window), nil
}

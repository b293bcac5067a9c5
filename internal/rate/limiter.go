// Package rate implements fixed-window request limiting keyed by caller.
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter counts a hit against key within the given window.
type Limiter interface {
	AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

func windowKey(prefix, key string, now time.Time, window time.Duration) string {
	winStart := now.Truncate(window)
	return fmt.Sprintf("%s%s:%d:%d", prefix, strings.ReplaceAll(key, " ", "_"), int64(window/time.Second), winStart.Unix())
}

func result(hits, limit int64, ttl, window time.Duration) Result {
	res := Result{
		Allowed:     hits <= limit,
		Remaining:   max(limit-hits, 0),
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Duration(math.Ceil(window.Seconds())) * time.Second
		}
	}
	return res
}

// RedisLimiter is a fixed window on INCR + EXPIRE, shared across instances.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
}

func NewRedisLimiter(client *rdb.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix}
}

func (l *RedisLimiter) AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	redisKey := windowKey(l.Prefix, key, time.Now().UTC(), window)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// set expiry on first hit
	if incr.Val() == 1 {
		if err := l.Client.Expire(ctx, redisKey, window).Err(); err != nil {
			return Result{}, err
		}
		ttl = l.Client.TTL(ctx, redisKey)
	}
	return result(incr.Val(), int64(limit), ttl.Val(), window), nil
}

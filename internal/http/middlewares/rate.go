package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/darrenak403/clothingshop-be/internal/http/errors"
	"github.com/darrenak403/clothingshop-be/internal/http/helpers"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
	"github.com/darrenak403/clothingshop-be/internal/rate"
)

// RateKeyFunc derives the limiter key for a request.
type RateKeyFunc func(r *http.Request) string

// IPRateKey keys by client IP and path.
func IPRateKey(r *http.Request) string {
	return helpers.ClientIP(r) + "|" + r.URL.Path
}

type RateLimitConfig struct {
	Limiter rate.Limiter
	Limit   int
	Window  time.Duration
	KeyFunc RateKeyFunc
}

// WithRateLimit rejects with 429 and Retry-After once a key exceeds Limit per Window.
// A nil limiter or non-positive limit disables it. Limiter failures let the request through.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.AllowWithLimits(r.Context(), cfg.KeyFunc(r), cfg.Limit, cfg.Window)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

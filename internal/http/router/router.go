// Package router mounts the controllers on a chi router.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "github.com/darrenak403/clothingshop-be/internal/http"
	authctrl "github.com/darrenak403/clothingshop-be/internal/http/controllers/auth"
	healthctrl "github.com/darrenak403/clothingshop-be/internal/http/controllers/health"
	"github.com/darrenak403/clothingshop-be/internal/http/errors"
	mw "github.com/darrenak403/clothingshop-be/internal/http/middlewares"
	jwtx "github.com/darrenak403/clothingshop-be/internal/jwt"
	"github.com/darrenak403/clothingshop-be/internal/rate"
)

// RateRule is a per-IP allowance. A zero Limit disables it.
type RateRule struct {
	Limit  int
	Window time.Duration
}

type Deps struct {
	Auth   *authctrl.Controllers
	Health *healthctrl.Controller
	Issuer *jwtx.Issuer

	// nil disables /metrics and request instrumentation
	Metrics     *httpx.Metrics
	MetricsPath string

	// nil disables rate limiting
	Limiter rate.Limiter
	Login   RateRule
	Forgot  RateRule
}

// New builds the root handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.WithMetrics)
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrMethodNotAllowed)
	})

	registerHealthRoutes(r, d)
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.Metrics.Handler())
	}
	r.Route("/api/auth", func(r chi.Router) {
		registerAuthRoutes(r, d)
	})
	return r
}

func registerHealthRoutes(r chi.Router, d Deps) {
	if d.Health == nil {
		return
	}
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
}

func limited(d Deps, rule RateRule) mw.Middleware {
	return mw.WithRateLimit(mw.RateLimitConfig{
		Limiter: d.Limiter,
		Limit:   rule.Limit,
		Window:  rule.Window,
		KeyFunc: mw.IPRateKey,
	})
}

// Package health checks the service's dependencies for readiness probes.
package health

import (
	"context"
	"time"

	dto "github.com/darrenak403/clothingshop-be/internal/http/dto/health"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
)

type Service interface {
	Check(ctx context.Context) dto.Response
}

// Deps lists the probes. A nil probe is reported as disabled.
type Deps struct {
	// StoreCheck is critical: a failure makes the service unavailable.
	StoreCheck func(ctx context.Context) error
	// RedisCheck failing only degrades: the limiter fails open.
	RedisCheck func(ctx context.Context) error
	Version    string
	Timeout    time.Duration
}

type service struct{ deps Deps }

func NewService(d Deps) Service {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &service{deps: d}
}

func (s *service) Check(ctx context.Context) dto.Response {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("health"), logger.Op("Check"))
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	resp := dto.Response{
		Status:     "ready",
		Components: map[string]dto.ComponentStatus{},
		Version:    s.deps.Version,
		Timestamp:  time.Now().UTC(),
	}

	probe := func(name string, check func(context.Context) error, critical bool) {
		if check == nil {
			resp.Components[name] = dto.ComponentStatus{Status: "disabled"}
			return
		}
		if err := check(ctx); err != nil {
			log.Error(name+" unavailable", logger.Err(err))
			resp.Components[name] = dto.ComponentStatus{Status: "error", Message: "unavailable"}
			if critical {
				resp.Status = "unavailable"
			} else if resp.Status == "ready" {
				resp.Status = "degraded"
			}
			return
		}
		resp.Components[name] = dto.ComponentStatus{Status: "ok"}
	}
	probe("store", s.deps.StoreCheck, true)
	probe("redis", s.deps.RedisCheck, false)
	return resp
}

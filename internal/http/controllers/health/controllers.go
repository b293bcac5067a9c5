// Package health serves the liveness and readiness probes.
package health

import (
	"net/http"

	"github.com/darrenak403/clothingshop-be/internal/http/helpers"
	svc "github.com/darrenak403/clothingshop-be/internal/http/services/health"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
)

type Controller struct {
	service svc.Service
}

func NewController(s svc.Service) *Controller {
	return &Controller{service: s}
}

// Healthz answers 200 while the process is serving.
func (c *Controller) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz answers 503 when a critical dependency is down.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := c.service.Check(r.Context())
	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	logger.From(r.Context()).Debug("readiness checked", logger.String("status", resp.Status))
	helpers.WriteJSON(w, status, resp)
}

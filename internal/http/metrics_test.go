package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsRequestsAndOutcomes(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)

	h := m.WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/550e8400-e29b-41d4-a716-446655440000", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/users/:param", "418")))

	m.RecordAuthOutcome("login", "ok")
	m.RecordAuthOutcome("login", "ok")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOutcomes.WithLabelValues("login", "ok")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "auth_operations_total")
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", normalizePath(""))
	assert.Equal(t, "/api/auth/me", normalizePath("/api/auth/me"))
	assert.Equal(t, "/orders/:param", normalizePath("/orders/42"))
}

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpx "github.com/darrenak403/clothingshop-be/internal/http"
	authctrl "github.com/darrenak403/clothingshop-be/internal/http/controllers/auth"
	healthctrl "github.com/darrenak403/clothingshop-be/internal/http/controllers/health"
	authsvc "github.com/darrenak403/clothingshop-be/internal/http/services/auth"
	healthsvc "github.com/darrenak403/clothingshop-be/internal/http/services/health"
	jwtx "github.com/darrenak403/clothingshop-be/internal/jwt"
	"github.com/darrenak403/clothingshop-be/internal/rate"
	"github.com/darrenak403/clothingshop-be/internal/security/password"
	"github.com/darrenak403/clothingshop-be/internal/store/memory"
)

type inbox struct {
	mu   sync.Mutex
	last map[string]string
}

func (i *inbox) SendOTP(_ context.Context, to, _, otp string, _ time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.last[to] = otp
	return nil
}

func (i *inbox) code(to string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.last[to]
}

type server struct {
	h     http.Handler
	inbox *inbox
}

func newServer(t *testing.T) *server {
	t.Helper()
	issuer, err := jwtx.NewIssuer("0123456789abcdef0123456789abcdef", "clothingshop", "clothingshop-clients", time.Hour)
	require.NoError(t, err)
	metrics, err := httpx.NewMetrics(httpx.MetricsConfig{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)

	db := memory.New()
	box := &inbox{last: map[string]string{}}
	svcs := authsvc.NewServices(authsvc.Deps{
		Conn:     db,
		Signer:   issuer,
		Notifier: box,
		Hasher:   password.NewBcryptHasher(bcrypt.MinCost),
		Policy:   password.DefaultPolicy(),
		Outcomes: metrics,
	})

	h := New(Deps{
		Auth:    authctrl.NewControllers(svcs.Facade),
		Health:  healthctrl.NewController(healthsvc.NewService(healthsvc.Deps{StoreCheck: db.Ping})),
		Issuer:  issuer,
		Metrics: metrics,
		Limiter: rate.NewMemoryLimiter(),
		Login:   RateRule{Limit: 100, Window: time.Minute},
		Forgot:  RateRule{Limit: 2, Window: time.Minute},
	})
	return &server{h: h, inbox: box}
}

type envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (s *server) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4000"
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func register(t *testing.T, s *server) {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": "Ann Lee", "email": "ann@example.com", "password": "secret1", "phoneNumber": "0912345678",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.True(t, env.Success)
}

func login(t *testing.T, s *server, pw string) (access, refresh string) {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": pw})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.AccessToken, data.RefreshToken
}

func TestAuthFlowOverHTTP(t *testing.T) {
	s := newServer(t)
	register(t, s)

	rec, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": "Ann Lee", "email": "ann@example.com", "password": "secret1", "phoneNumber": "0912345678",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email_taken", env.Code)

	access, refresh := login(t, s, "secret1")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec, env = s.do(t, http.MethodGet, "/api/auth/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "ann@example.com")

	rec, _ = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec, _ = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, env = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_refresh_token", env.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/auth/change-password", access, map[string]string{
		"currentPassword": "secret1", "newPassword": "newpass1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	login(t, s, "newpass1")
}

func TestResetOverHTTP(t *testing.T) {
	s := newServer(t)
	register(t, s)
	_, refresh := login(t, s, "secret1")

	rec, env := s.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ann@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	code := s.inbox.code("ann@example.com")
	require.Len(t, code, 6)
	assert.NotContains(t, rec.Body.String(), code)

	rec, env = s.do(t, http.MethodPost, "/api/auth/change-password", "", map[string]string{
		"email": "ann@example.com", "otp": code, "newPassword": "newpass1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(t, http.MethodPost, "/api/auth/logout", "", map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "refresh_token_not_found", env.Code)

	access, _ := login(t, s, "newpass1")
	rec, env = s.do(t, http.MethodGet, "/api/auth/password-resets", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"status":"used"`)
	assert.NotContains(t, string(env.Data), code)
}

func TestForgotPasswordIsRateLimited(t *testing.T) {
	s := newServer(t)
	register(t, s)

	for i := 0; i < 2; i++ {
		rec, _ := s.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ann@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := s.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ann@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too_many_requests", env.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestBadInput(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")

	rec, env := s.do(t, http.MethodGet, "/api/auth/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestProbesAndMetrics(t *testing.T) {
	s := newServer(t)

	rec, _ := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":{"status":"ok"}`)

	s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "x@example.com", "password": "whatever"})
	rec, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `auth_operations_total{code="invalid_credentials",op="login"} 1`)
	assert.Contains(t, body, `path="/api/auth/login"`)
}

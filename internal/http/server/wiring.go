// Package server builds the HTTP handler and its dependencies from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"

	"github.com/darrenak403/clothingshop-be/internal/config"
	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	"github.com/darrenak403/clothingshop-be/internal/email"
	httpx "github.com/darrenak403/clothingshop-be/internal/http"
	authctrl "github.com/darrenak403/clothingshop-be/internal/http/controllers/auth"
	healthctrl "github.com/darrenak403/clothingshop-be/internal/http/controllers/health"
	"github.com/darrenak403/clothingshop-be/internal/http/router"
	authsvc "github.com/darrenak403/clothingshop-be/internal/http/services/auth"
	healthsvc "github.com/darrenak403/clothingshop-be/internal/http/services/health"
	jwtx "github.com/darrenak403/clothingshop-be/internal/jwt"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
	"github.com/darrenak403/clothingshop-be/internal/rate"
	"github.com/darrenak403/clothingshop-be/internal/security/password"
	"github.com/darrenak403/clothingshop-be/internal/store"
	"github.com/darrenak403/clothingshop-be/internal/store/pg"

	_ "github.com/darrenak403/clothingshop-be/internal/store/memory"
)

// App is a wired service. Close releases the store and the redis client.
type App struct {
	Handler http.Handler
	Conn    repository.Connection
	Auth    authsvc.Services

	closers []func() error
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// OpenStore connects the configured storage driver.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Connection, error) {
	return store.Open(ctx, cfg.Storage.Driver, store.AdapterConfig{
		DSN:             cfg.Storage.DSN,
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
}

// NewHasher returns the configured bcrypt hasher and length policy.
func NewHasher(cfg *config.Config) (*password.BcryptHasher, password.Policy) {
	policy := password.DefaultPolicy()
	policy.MinLength = cfg.Security.PasswordPolicy.MinLength
	return password.NewBcryptHasher(cfg.Security.PasswordPolicy.BcryptCost), policy
}

// Build wires every dependency. On error, whatever was opened is closed.
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	log := logger.L().With(logger.Component("wiring"))
	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	conn, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Conn = conn
	app.closers = append(app.closers, conn.Close)
	log.Info("store connected", logger.Driver(conn.Name()))

	issuer, err := jwtx.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.AccessTTL())
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return nil, err
	}

	var (
		limiter    rate.Limiter
		redisCheck func(context.Context) error
	)
	if cfg.Rate.Enabled {
		switch strings.ToLower(cfg.Cache.Kind) {
		case "redis":
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			app.closers = append(app.closers, client.Close)
			limiter = rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix)
			redisCheck = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			log.Info("rate limiter on redis", logger.String("addr", cfg.Cache.Redis.Addr))
		default:
			limiter = rate.NewMemoryLimiter()
		}
	}

	var metrics *httpx.Metrics
	if cfg.Metrics.Enabled {
		mc := httpx.MetricsConfig{}
		if pgConn, perr := pg.AsConn(conn); perr == nil {
			mc.Pool = func() *pgxpool.Pool { return pgConn.Pool() }
		}
		if metrics, err = httpx.NewMetrics(mc); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	hasher, policy := NewHasher(cfg)
	deps := authsvc.Deps{
		Conn:     conn,
		Signer:   issuer,
		Notifier: notifier,
		Hasher:   hasher,
		Policy:   policy,
		Reset: authsvc.ResetConfig{
			OTPLength:   cfg.Auth.Reset.OTPLength,
			OTPTTL:      cfg.OTPTTL(),
			DailyCap:    cfg.Auth.Reset.DailyCap,
			MaxAttempts: cfg.Auth.Reset.MaxAttempts,
		},
		RefreshTTL:       cfg.RefreshTTL(),
		DefaultRole:      cfg.Auth.DefaultRole,
		OperationTimeout: cfg.Auth.OperationTimeout,
	}
	if metrics != nil {
		deps.Outcomes = metrics
	}
	app.Auth = authsvc.NewServices(deps)

	app.Handler = router.New(router.Deps{
		Auth: authctrl.NewControllers(app.Auth.Facade),
		Health: healthctrl.NewController(healthsvc.NewService(healthsvc.Deps{
			StoreCheck: conn.Ping,
			RedisCheck: redisCheck,
		})),
		Issuer:      issuer,
		Metrics:     metrics,
		MetricsPath: cfg.Metrics.Path,
		Limiter:     limiter,
		Login:       router.RateRule{Limit: cfg.Rate.Login.Limit, Window: cfg.Rate.Login.Window},
		Forgot:      router.RateRule{Limit: cfg.Rate.Forgot.Limit, Window: cfg.Rate.Forgot.Window},
	})
	return app, nil
}

func newNotifier(cfg *config.Config) (email.Notifier, error) {
	tpl, err := email.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}
	if cfg.SMTP.Host == "" {
		logger.L().Warn("smtp.host is empty; reset codes cannot be delivered")
	}
	sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	sender.TLSMode = cfg.SMTP.TLS
	sender.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
	return email.NewMailNotifier(sender, tpl, cfg.Email.ProductName), nil
}

// NewHTTPServer applies the configured address and timeouts.
func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
}

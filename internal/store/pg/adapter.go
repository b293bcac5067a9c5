// Package pg is the PostgreSQL storage backend, built on pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	"github.com/darrenak403/clothingshop-be/internal/store"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (repository.Connection, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pg: %w", repository.ErrNoDatabase)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	poolCfg.MaxConns = 10
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolCfg.MinConns = 2
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	return &Conn{pool: pool}, nil
}

// Conn is an open pool. It satisfies repository.Connection.
type Conn struct {
	pool *pgxpool.Pool
}

// NewConn wraps an existing pool.
func NewConn(pool *pgxpool.Pool) *Conn { return &Conn{pool: pool} }

func (c *Conn) Name() string { return "postgres" }

func (c *Conn) Credentials() repository.CredentialStore { return &credentialStore{pool: c.pool} }

func (c *Conn) ResetAttempts() repository.ResetAttemptStore { return &attemptStore{pool: c.pool} }

func (c *Conn) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

func (c *Conn) Close() error {
	c.pool.Close()
	return nil
}

// Pool exposes the underlying pool for migrations and admin commands.
func (c *Conn) Pool() *pgxpool.Pool { return c.pool }

// AsConn unwraps a repository.Connection opened by this driver.
func AsConn(conn repository.Connection) (*Conn, error) {
	c, ok := conn.(*Conn)
	if !ok {
		return nil, errors.New("pg: connection is not a postgres connection")
	}
	return c, nil
}

// Package memory is an in-process storage backend. Both stores share one mutex, which
// gives the same all-or-nothing behavior the postgres backend gets from transactions.
// Data does not survive a restart; use it for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	"github.com/darrenak403/clothingshop-be/internal/store"
)

func init() {
	store.RegisterAdapter(adapter{})
}

type adapter struct{}

func (adapter) Name() string { return "memory" }

func (adapter) Connect(ctx context.Context, _ store.AdapterConfig) (repository.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return New(), nil
}

// DB holds users, roles and reset attempts.
type DB struct {
	mu       sync.Mutex
	users    map[string]*repository.User
	byEmail  map[string]string
	roles    map[int]repository.Role
	attempts []*repository.ResetAttempt
}

// New returns an empty DB with the Admin and Customer roles seeded.
func New() *DB {
	return &DB{
		users:   make(map[string]*repository.User),
		byEmail: make(map[string]string),
		roles: map[int]repository.Role{
			1: {ID: 1, Name: repository.RoleAdmin},
			2: {ID: 2, Name: repository.RoleCustomer},
		},
	}
}

func (db *DB) Name() string { return "memory" }

func (db *DB) Credentials() repository.CredentialStore { return &credentialStore{db: db} }

func (db *DB) ResetAttempts() repository.ResetAttemptStore { return &attemptStore{db: db} }

func (db *DB) Ping(ctx context.Context) error { return ctx.Err() }

func (db *DB) Close() error { return nil }

func cloneUser(u *repository.User) *repository.User {
	c := *u
	if u.LockReason != nil {
		r := *u.LockReason
		c.LockReason = &r
	}
	if u.RefreshTokenHash != nil {
		h := *u.RefreshTokenHash
		c.RefreshTokenHash = &h
	}
	if u.RefreshTokenExpiresAt != nil {
		t := *u.RefreshTokenExpiresAt
		c.RefreshTokenExpiresAt = &t
	}
	return &c
}

func cloneAttempt(a *repository.ResetAttempt) *repository.ResetAttempt {
	c := *a
	if a.UsedAt != nil {
		t := *a.UsedAt
		c.UsedAt = &t
	}
	return &c
}

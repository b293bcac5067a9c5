package repository

import (
	"context"
	"time"
)

// Built-in role names. Role ids are fixed by the schema seed.
const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
)

// Role is resolved with an explicit lookup, never joined implicitly.
type Role struct {
	ID   int
	Name string
}

// User is the identity record the auth core reads and mutates.
type User struct {
	ID           string
	FullName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	RoleID       int
	IsActive     bool
	LockReason   *string

	// RefreshTokenHash is the digest of the single live refresh token, nil when logged out.
	RefreshTokenHash      *string
	RefreshTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput holds what register persists.
type CreateUserInput struct {
	FullName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	RoleID       int
}

// CredentialStore is the persistence contract for identities.
type CredentialStore interface {
	// GetByEmail returns ErrNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, userID string) (*User, error)

	// GetByRefreshTokenHash returns the user whose stored digest equals tokenHash.
	// Expiry is not checked here.
	GetByRefreshTokenHash(ctx context.Context, tokenHash string) (*User, error)

	// Create inserts an active user. Returns ErrConflict if the email is taken.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	GetRole(ctx context.Context, roleID int) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)

	// SetRefreshToken overwrites whatever token the user had.
	SetRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ReplaceRefreshToken swaps oldHash for newHash only if oldHash is still current.
	// Returns ErrNotFound when another writer got there first.
	ReplaceRefreshToken(ctx context.Context, userID, oldHash, newHash string, expiresAt time.Time) error

	// ClearRefreshTokenByHash logs the owner out. Returns ErrNotFound if no user holds it.
	ClearRefreshTokenByHash(ctx context.Context, tokenHash string) error

	// UpdatePassword stores a new hash and clears the refresh token in the same write.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// SetActive flips the active flag. reason is stored only when deactivating.
	SetActive(ctx context.Context, userID string, active bool, reason *string) error
}

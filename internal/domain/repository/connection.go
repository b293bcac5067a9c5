package repository

import "context"

// Connection is an open storage backend exposing both stores.
type Connection interface {
	Name() string
	Credentials() CredentialStore
	ResetAttempts() ResetAttemptStore
	Ping(ctx context.Context) error
	Close() error
}

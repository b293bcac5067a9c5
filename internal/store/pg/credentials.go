package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
)

type credentialStore struct {
	pool *pgxpool.Pool
}

const userColumns = `id::text, full_name, email, phone_number, password_hash, role_id, is_active,
	lock_reason, refresh_token_hash, refresh_token_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.RoleID, &u.IsActive,
		&u.LockReason, &u.RefreshTokenHash, &u.RefreshTokenExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *credentialStore) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE email = $1`, email))
}

func (s *credentialStore) GetByID(ctx context.Context, userID string) (*repository.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
}

func (s *credentialStore) GetByRefreshTokenHash(ctx context.Context, tokenHash string) (*repository.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE refresh_token_hash = $1`, tokenHash))
}

func (s *credentialStore) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO app_user (full_name, email, phone_number, password_hash, role_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		in.FullName, in.Email, in.PhoneNumber, in.PasswordHash, in.RoleID))
}

func (s *credentialStore) GetRole(ctx context.Context, roleID int) (*repository.Role, error) {
	var r repository.Role
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM role WHERE id = $1`, roleID).Scan(&r.ID, &r.Name)
	if err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (s *credentialStore) GetRoleByName(ctx context.Context, name string) (*repository.Role, error) {
	var r repository.Role
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM role WHERE name = $1`, name).Scan(&r.ID, &r.Name)
	if err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (s *credentialStore) SetRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	return execOne(ctx, s.pool, `
		UPDATE app_user
		SET refresh_token_hash = $2, refresh_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1`, id, tokenHash, expiresAt)
}

// ReplaceRefreshToken only succeeds while oldHash is still the stored value.
func (s *credentialStore) ReplaceRefreshToken(ctx context.Context, userID, oldHash, newHash string, expiresAt time.Time) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	return execOne(ctx, s.pool, `
		UPDATE app_user
		SET refresh_token_hash = $3, refresh_token_expires_at = $4, updated_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2`, id, oldHash, newHash, expiresAt)
}

func (s *credentialStore) ClearRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	return execOne(ctx, s.pool, `
		UPDATE app_user
		SET refresh_token_hash = NULL, refresh_token_expires_at = NULL, updated_at = NOW()
		WHERE refresh_token_hash = $1`, tokenHash)
}

func (s *credentialStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	return execOne(ctx, s.pool, `
		UPDATE app_user
		SET password_hash = $2, refresh_token_hash = NULL, refresh_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`, id, passwordHash)
}

func (s *credentialStore) SetActive(ctx context.Context, userID string, active bool, reason *string) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	if active {
		reason = nil
	}
	return execOne(ctx, s.pool, `
		UPDATE app_user
		SET is_active = $2, lock_reason = $3, updated_at = NOW()
		WHERE id = $1`, id, active, reason)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// execOne runs an UPDATE that must touch exactly one row.
func execOne(ctx context.Context, db execer, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
)

type credentialStore struct{ db *DB }

func (s *credentialStore) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok := s.db.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(s.db.users[id]), nil
}

func (s *credentialStore) GetByID(ctx context.Context, userID string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *credentialStore) GetByRefreshTokenHash(ctx context.Context, tokenHash string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if u.RefreshTokenHash != nil && *u.RefreshTokenHash == tokenHash {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *credentialStore) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.byEmail[in.Email]; taken {
		return nil, repository.ErrConflict
	}
	if _, ok := s.db.roles[in.RoleID]; !ok {
		return nil, repository.ErrNotFound
	}

	now := time.Now().UTC()
	u := &repository.User{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: in.PasswordHash,
		RoleID:       in.RoleID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.db.users[u.ID] = u
	s.db.byEmail[u.Email] = u.ID
	return cloneUser(u), nil
}

func (s *credentialStore) GetRole(ctx context.Context, roleID int) (*repository.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.roles[roleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *credentialStore) GetRoleByName(ctx context.Context, name string) (*repository.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, r := range s.db.roles {
		if r.Name == name {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *credentialStore) SetRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	setToken(u, tokenHash, expiresAt)
	return nil
}

func (s *credentialStore) ReplaceRefreshToken(ctx context.Context, userID, oldHash, newHash string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[userID]
	if !ok || u.RefreshTokenHash == nil || *u.RefreshTokenHash != oldHash {
		return repository.ErrNotFound
	}
	setToken(u, newHash, expiresAt)
	return nil
}

func (s *credentialStore) ClearRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if u.RefreshTokenHash != nil && *u.RefreshTokenHash == tokenHash {
			clearToken(u)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *credentialStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	clearToken(u)
	return nil
}

func (s *credentialStore) SetActive(ctx context.Context, userID string, active bool, reason *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	u.LockReason = nil
	if !active && reason != nil {
		r := *reason
		u.LockReason = &r
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func setToken(u *repository.User, hash string, exp time.Time) {
	u.RefreshTokenHash = &hash
	u.RefreshTokenExpiresAt = &exp
	u.UpdatedAt = time.Now().UTC()
}

func clearToken(u *repository.User) {
	u.RefreshTokenHash = nil
	u.RefreshTokenExpiresAt = nil
	u.UpdatedAt = time.Now().UTC()
}

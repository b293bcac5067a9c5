package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	"github.com/darrenak403/clothingshop-be/internal/security/password"
	"github.com/darrenak403/clothingshop-be/internal/store/memory"
)

func adminConfig(db *memory.DB) AdminConfig {
	return AdminConfig{
		Credentials: db.Credentials(),
		Hasher:      password.NewBcryptHasher(bcrypt.MinCost),
		Policy:      password.DefaultPolicy(),
		SkipPrompt:  true,
	}
}

func TestEnsureAdmin_CreatesOnceWithAdminRole(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	cfg := adminConfig(db)
	cfg.Email = " Root@Example.com "
	cfg.Password = "s3cret-pass"

	u, created, err := EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "root@example.com", u.Email)

	role, err := db.Credentials().GetRole(ctx, u.RoleID)
	require.NoError(t, err)
	assert.Equal(t, repository.RoleAdmin, role.Name)

	again, created, err := EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
}

func TestEnsureAdmin_RejectsBadInput(t *testing.T) {
	db := memory.New()

	cfg := adminConfig(db)
	_, _, err := EnsureAdmin(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg.Email = "not-an-email"
	cfg.Password = "s3cret-pass"
	_, _, err = EnsureAdmin(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg.Email = "root@example.com"
	cfg.Password = "abc"
	_, _, err = EnsureAdmin(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEnsureAdmin_UsesPrompt(t *testing.T) {
	db := memory.New()
	cfg := adminConfig(db)
	cfg.SkipPrompt = false
	cfg.Prompt = func() (string, string, error) { return "ops@example.com", "prompted-pass", nil }

	u, created, err := EnsureAdmin(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ops@example.com", u.Email)

	cfg.Email = ""
	cfg.Prompt = func() (string, string, error) { return "", "", ErrPasswordsDiffer }
	_, _, err = EnsureAdmin(context.Background(), cfg)
	assert.True(t, errors.Is(err, ErrPasswordsDiffer))
}

func TestSetActiveByEmail(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	cfg := adminConfig(db)
	cfg.Email = "root@example.com"
	cfg.Password = "s3cret-pass"
	_, _, err := EnsureAdmin(ctx, cfg)
	require.NoError(t, err)

	u, err := SetActiveByEmail(ctx, db.Credentials(), "ROOT@example.com", false, "chargeback")
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	require.NotNil(t, u.LockReason)
	assert.Equal(t, "chargeback", *u.LockReason)

	u, err = SetActiveByEmail(ctx, db.Credentials(), "root@example.com", true, "ignored")
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.LockReason)

	_, err = SetActiveByEmail(ctx, db.Credentials(), "nobody@example.com", true, "")
	assert.True(t, repository.IsNotFound(err))
}

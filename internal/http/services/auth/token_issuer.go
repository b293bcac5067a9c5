package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	dto "github.com/darrenak403/clothingshop-be/internal/http/dto/auth"
	jwtx "github.com/darrenak403/clothingshop-be/internal/jwt"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
	"github.com/darrenak403/clothingshop-be/internal/security/token"
)

// TokenIssuer mints access/refresh pairs and rotates or revokes refresh tokens.
// Refresh tokens are stored as SHA-256 digests, one live token per user.
type TokenIssuer struct {
	creds      repository.CredentialStore
	signer     *jwtx.Issuer
	gen        token.Generator
	refreshTTL time.Duration
	now        func() time.Time

	// concurrent refreshes of the same token share one rotation, detached from any
	// single caller and bounded by rotateTimeout
	inflight      singleflight.Group
	rotateTimeout time.Duration
}

type TokenIssuerDeps struct {
	Credentials repository.CredentialStore
	Signer      *jwtx.Issuer
	Generator   token.Generator
	RefreshTTL  time.Duration
	Now         func() time.Time

	// RotateTimeout bounds a shared rotation. Default 10s.
	RotateTimeout time.Duration
}

func NewTokenIssuer(d TokenIssuerDeps) *TokenIssuer {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.RefreshTTL <= 0 {
		d.RefreshTTL = 7 * 24 * time.Hour
	}
	if d.RotateTimeout <= 0 {
		d.RotateTimeout = 10 * time.Second
	}
	return &TokenIssuer{
		creds:         d.Credentials,
		signer:        d.Signer,
		gen:           d.Generator,
		refreshTTL:    d.RefreshTTL,
		now:           d.Now,
		rotateTimeout: d.RotateTimeout,
	}
}

type mintedPair struct {
	resp        dto.TokenResponse
	refreshHash string
	refreshExp  time.Time
}

func (t *TokenIssuer) mint(u *repository.User, role string) (*mintedPair, error) {
	access, accessExp, err := t.signer.IssueAccess(jwtx.Subject{
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     role,
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := t.gen.OpaqueToken(token.RefreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	now := t.now().UTC()
	refreshExp := now.Add(t.refreshTTL)

	return &mintedPair{
		resp: dto.TokenResponse{
			AccessToken:      access,
			RefreshToken:     refresh,
			TokenType:        "Bearer",
			ExpiresIn:        int64(accessExp.Sub(now).Seconds()),
			ExpiresAt:        accessExp,
			RefreshExpiresAt: refreshExp,
			User:             summarize(u, role),
		},
		refreshHash: token.SHA256Base64URL(refresh),
		refreshExp:  refreshExp,
	}, nil
}

// Issue mints a pair for u and stores the refresh token, overwriting any previous one.
func (t *TokenIssuer) Issue(ctx context.Context, u *repository.User, role string) (*dto.TokenResponse, error) {
	p, err := t.mint(u, role)
	if err != nil {
		return nil, err
	}
	if err := t.creds.SetRefreshToken(ctx, u.ID, p.refreshHash, p.refreshExp); err != nil {
		return nil, storeErr(err)
	}
	return &p.resp, nil
}

// Refresh exchanges a live refresh token for a new pair. The old token stops working.
// Each caller waits only until its own context ends; the rotation it joined keeps
// running for the other callers.
func (t *TokenIssuer) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	hash := token.SHA256Base64URL(refreshToken)

	ch := t.inflight.DoChan(hash, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.rotateTimeout)
		defer cancel()
		return t.rotate(rctx, hash)
	})

	select {
	case r := <-ch:
		if r.Shared {
			logger.From(ctx).Debug("refresh shared with concurrent caller")
		}
		if r.Err != nil {
			return nil, r.Err
		}
		resp := *r.Val.(*dto.TokenResponse)
		return &resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

func (t *TokenIssuer) rotate(ctx context.Context, oldHash string) (*dto.TokenResponse, error) {
	u, err := t.creds.GetByRefreshTokenHash(ctx, oldHash)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, storeErr(err)
	}
	if u.RefreshTokenExpiresAt == nil || !t.now().Before(*u.RefreshTokenExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	role, err := roleName(ctx, t.creds, u.RoleID)
	if err != nil {
		return nil, err
	}

	p, err := t.mint(u, role)
	if err != nil {
		return nil, err
	}
	if err := t.creds.ReplaceRefreshToken(ctx, u.ID, oldHash, p.refreshHash, p.refreshExp); err != nil {
		if repository.IsNotFound(err) {
			// revoked or rotated by someone else since the lookup
			return nil, ErrInvalidRefreshToken
		}
		return nil, storeErr(err)
	}
	return &p.resp, nil
}

// Revoke clears the stored refresh token. Unknown tokens are reported, not ignored.
func (t *TokenIssuer) Revoke(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return ErrRefreshTokenNotFound
	}
	if err := t.creds.ClearRefreshTokenByHash(ctx, token.SHA256Base64URL(refreshToken)); err != nil {
		if repository.IsNotFound(err) {
			return ErrRefreshTokenNotFound
		}
		return storeErr(err)
	}
	return nil
}

func summarize(u *repository.User, role string) dto.UserSummary {
	return dto.UserSummary{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

func roleName(ctx context.Context, creds repository.CredentialStore, roleID int) (string, error) {
	r, err := creds.GetRole(ctx, roleID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", fmt.Errorf("%w: role %d missing", ErrInternal, roleID)
		}
		return "", storeErr(err)
	}
	return r.Name, nil
}

// storeErr keeps deadlines visible and reports every other store failure as unavailable.
func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

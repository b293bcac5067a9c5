// Package jwt signs and verifies HS256 access tokens.
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretBytes is the shortest HMAC secret accepted.
const MinSecretBytes = 32

var ErrWeakSecret = errors.New("jwt: secret must be at least 32 bytes")

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwtv5.RegisteredClaims
}

// Subject identifies who a token is minted for.
type Subject struct {
	UserID   string
	Email    string
	FullName string
	Role     string
}

// Issuer signs access tokens with a shared secret.
type Issuer struct {
	Iss       string
	Aud       string
	AccessTTL time.Duration

	secret []byte
	now    func() time.Time
}

func NewIssuer(secret, iss, aud string, accessTTL time.Duration) (*Issuer, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	if accessTTL <= 0 {
		accessTTL = 60 * time.Minute
	}
	return &Issuer{
		Iss:       iss,
		Aud:       aud,
		AccessTTL: accessTTL,
		secret:    []byte(secret),
		now:       time.Now,
	}, nil
}

// WithClock replaces the time source; used by tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// IssueAccess returns the signed token and its expiry.
func (i *Issuer) IssueAccess(s Subject) (string, time.Time, error) {
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.AccessTTL)

	claims := AccessClaims{
		Email: s.Email,
		Name:  s.FullName,
		Role:  s.Role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   s.UserID,
			Audience:  jwtv5.ClaimStrings{i.Aud},
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

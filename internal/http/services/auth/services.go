// Package auth holds the account services: token issuance, the password reset flow
// and the facade the controllers call.
package auth

import (
	"time"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	"github.com/darrenak403/clothingshop-be/internal/email"
	jwtx "github.com/darrenak403/clothingshop-be/internal/jwt"
	"github.com/darrenak403/clothingshop-be/internal/security/password"
	"github.com/darrenak403/clothingshop-be/internal/security/token"
)

// Deps are the external dependencies of the auth services.
type Deps struct {
	Conn     repository.Connection
	Signer   *jwtx.Issuer
	Notifier email.Notifier
	Hasher   PasswordHasher
	Policy   password.Policy

	// zero value means crypto/rand
	Generator token.Generator

	RefreshTTL       time.Duration
	Reset            ResetConfig
	DefaultRole      string
	OperationTimeout time.Duration
	Outcomes         OutcomeRecorder

	// nil means time.Now
	Now func() time.Time
}

// Services groups the auth services.
type Services struct {
	Tokens *TokenIssuer
	Reset  *ResetFlow
	Facade *Facade
}

func NewServices(d Deps) Services {
	creds := d.Conn.Credentials()
	tokens := NewTokenIssuer(TokenIssuerDeps{
		Credentials:   creds,
		Signer:        d.Signer,
		Generator:     d.Generator,
		RefreshTTL:    d.RefreshTTL,
		Now:           d.Now,
		RotateTimeout: d.OperationTimeout,
	})
	reset := NewResetFlow(ResetFlowDeps{
		Credentials: creds,
		Attempts:    d.Conn.ResetAttempts(),
		Notifier:    d.Notifier,
		Hasher:      d.Hasher,
		Policy:      d.Policy,
		Generator:   d.Generator,
		Config:      d.Reset,
		Now:         d.Now,
	})
	return Services{
		Tokens: tokens,
		Reset:  reset,
		Facade: NewFacade(FacadeDeps{
			Credentials:      creds,
			Hasher:           d.Hasher,
			Policy:           d.Policy,
			Tokens:           tokens,
			Reset:            reset,
			DefaultRole:      d.DefaultRole,
			OperationTimeout: d.OperationTimeout,
			Outcomes:         d.Outcomes,
		}),
	}
}

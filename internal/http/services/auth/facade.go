package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	dto "github.com/darrenak403/clothingshop-be/internal/http/dto/auth"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
	"github.com/darrenak403/clothingshop-be/internal/security/password"
	"github.com/darrenak403/clothingshop-be/internal/validation"
)

// OutcomeRecorder observes the result code of each facade operation.
type OutcomeRecorder interface {
	RecordAuthOutcome(op, code string)
}

// Facade exposes the account operations. No method returns an error: every failure
// is folded into the Result envelope.
type Facade struct {
	creds       repository.CredentialStore
	hasher      PasswordHasher
	policy      password.Policy
	tokens      *TokenIssuer
	reset       *ResetFlow
	defaultRole string
	timeout     time.Duration
	outcomes    OutcomeRecorder

	// dummyHash is verified against when the email is unknown, so both login
	// failures cost one bcrypt comparison.
	dummyOnce sync.Once
	dummyHash string
}

type FacadeDeps struct {
	Credentials      repository.CredentialStore
	Hasher           PasswordHasher
	Policy           password.Policy
	Tokens           *TokenIssuer
	Reset            *ResetFlow
	DefaultRole      string
	OperationTimeout time.Duration
	Outcomes         OutcomeRecorder
}

func NewFacade(d FacadeDeps) *Facade {
	if d.DefaultRole == "" {
		d.DefaultRole = repository.RoleCustomer
	}
	return &Facade{
		creds:       d.Credentials,
		hasher:      d.Hasher,
		policy:      d.Policy,
		tokens:      d.Tokens,
		reset:       d.Reset,
		defaultRole: d.DefaultRole,
		timeout:     d.OperationTimeout,
		outcomes:    d.Outcomes,
	}
}

func (f *Facade) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, *zap.Logger) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth"), logger.Op(op))
	ctx = logger.ToContext(ctx, log)
	if f.timeout > 0 {
		c, cancel := context.WithTimeout(ctx, f.timeout)
		return c, cancel, log
	}
	return ctx, func() {}, log
}

func finish[T any](f *Facade, log *zap.Logger, op string, r Result[T]) Result[T] {
	code := r.Code
	if r.Success {
		code = "ok"
	}
	if f.outcomes != nil {
		f.outcomes.RecordAuthOutcome(op, code)
	}
	if !r.Success {
		switch KindOf(r.Err) {
		case KindInternal, KindDependency, KindTimeout:
			log.Error("operation failed", logger.Code(code), logger.Err(r.Err))
		default:
			log.Info("operation rejected", logger.Code(code))
		}
	}
	return r
}

// Register creates an account with the default role.
func (f *Facade) Register(ctx context.Context, in dto.RegisterRequest) Result[dto.UserSummary] {
	ctx, cancel, log := f.begin(ctx, "Register")
	defer cancel()
	return finish(f, log, "register", f.register(ctx, in))
}

func (f *Facade) register(ctx context.Context, in dto.RegisterRequest) Result[dto.UserSummary] {
	fullName := strings.TrimSpace(in.FullName)
	addr := validation.NormalizeEmail(in.Email)
	phone := strings.TrimSpace(in.PhoneValue())

	v := &ValidationError{}
	if !validation.ValidFullName(fullName) {
		v.add("fullName", "length must be 3..100")
	}
	if !validation.ValidEmail(addr) {
		v.add("email", "invalid")
	}
	if ok, reasons := f.policy.Validate(in.Password); !ok {
		v.add("password", strings.Join(reasons, ","))
	}
	if phone == "" {
		v.add("phoneNumber", "required")
	} else if !validation.ValidPhone(phone) {
		v.add("phoneNumber", "invalid")
	}
	if err := v.orNil(); err != nil {
		return fail[dto.UserSummary](err)
	}

	role, err := f.creds.GetRoleByName(ctx, f.defaultRole)
	if err != nil {
		if repository.IsNotFound(err) {
			return fail[dto.UserSummary](ErrInternal)
		}
		return fail[dto.UserSummary](storeErr(err))
	}
	hash, err := f.hasher.Hash(in.Password)
	if err != nil {
		return fail[dto.UserSummary](fmt.Errorf("%w: hash: %v", ErrInternal, err))
	}

	u, err := f.creds.Create(ctx, repository.CreateUserInput{
		FullName:     fullName,
		Email:        addr,
		PhoneNumber:  phone,
		PasswordHash: hash,
		RoleID:       role.ID,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return fail[dto.UserSummary](ErrEmailTaken)
		}
		return fail[dto.UserSummary](storeErr(err))
	}

	logger.From(ctx).Info("user registered", logger.UserID(u.ID))
	s := summarize(u, role.Name)
	return ok(http.StatusCreated, "Registration successful.", &s)
}

// Login checks the password first and the active flag second, so only the rightful
// owner of a disabled account learns it is disabled.
func (f *Facade) Login(ctx context.Context, in dto.LoginRequest) Result[dto.TokenResponse] {
	ctx, cancel, log := f.begin(ctx, "Login")
	defer cancel()
	return finish(f, log, "login", f.login(ctx, in))
}

func (f *Facade) login(ctx context.Context, in dto.LoginRequest) Result[dto.TokenResponse] {
	addr := validation.NormalizeEmail(in.Email)
	if addr == "" || in.Password == "" {
		v := &ValidationError{}
		if addr == "" {
			v.add("email", "required")
		}
		if in.Password == "" {
			v.add("password", "required")
		}
		return fail[dto.TokenResponse](v)
	}

	u, err := f.creds.GetByEmail(ctx, addr)
	if err != nil {
		if repository.IsNotFound(err) {
			f.hasher.Verify(f.dummy(), in.Password)
			return fail[dto.TokenResponse](ErrInvalidCredentials)
		}
		return fail[dto.TokenResponse](storeErr(err))
	}
	if !f.hasher.Verify(u.PasswordHash, in.Password) {
		return fail[dto.TokenResponse](ErrInvalidCredentials)
	}
	if !u.IsActive {
		return fail[dto.TokenResponse](ErrAccountDisabled)
	}

	role, err := roleName(ctx, f.creds, u.RoleID)
	if err != nil {
		return fail[dto.TokenResponse](err)
	}
	pair, err := f.tokens.Issue(ctx, u, role)
	if err != nil {
		return fail[dto.TokenResponse](err)
	}
	return ok(http.StatusOK, "Login successful.", pair)
}

func (f *Facade) dummy() string {
	f.dummyOnce.Do(func() {
		f.dummyHash, _ = f.hasher.Hash("clothingshop-dummy-password")
	})
	return f.dummyHash
}

// RefreshToken rotates a refresh token.
func (f *Facade) RefreshToken(ctx context.Context, in dto.RefreshRequest) Result[dto.TokenResponse] {
	ctx, cancel, log := f.begin(ctx, "RefreshToken")
	defer cancel()

	pair, err := f.tokens.Refresh(ctx, in.RefreshToken)
	if err != nil {
		return finish(f, log, "refresh", fail[dto.TokenResponse](err))
	}
	return finish(f, log, "refresh", ok(http.StatusOK, "Token refreshed.", pair))
}

// Logout revokes a refresh token.
func (f *Facade) Logout(ctx context.Context, in dto.LogoutRequest) Result[Empty] {
	ctx, cancel, log := f.begin(ctx, "Logout")
	defer cancel()

	if err := f.tokens.Revoke(ctx, in.RefreshToken); err != nil {
		return finish(f, log, "logout", fail[Empty](err))
	}
	return finish(f, log, "logout", okMsg("Logged out."))
}

// ForgotPassword sends a reset code to the account's email.
func (f *Facade) ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) Result[dto.ForgotPasswordResponse] {
	ctx, cancel, log := f.begin(ctx, "ForgotPassword")
	defer cancel()

	res, err := f.reset.ForgotPassword(ctx, in.Email)
	if err != nil {
		return finish(f, log, "forgot_password", fail[dto.ForgotPasswordResponse](err))
	}
	return finish(f, log, "forgot_password", ok(http.StatusOK, "A reset code has been sent to your email.", res))
}

// ResetPassword redeems a reset code.
func (f *Facade) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) Result[Empty] {
	ctx, cancel, log := f.begin(ctx, "ResetPassword")
	defer cancel()

	if err := f.reset.ResetPassword(ctx, in.Email, in.OTP, in.NewPassword); err != nil {
		return finish(f, log, "reset_password", fail[Empty](err))
	}
	return finish(f, log, "reset_password", okMsg("Password has been reset. Please sign in again."))
}

// ChangePassword changes the password of the signed-in user.
func (f *Facade) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) Result[Empty] {
	ctx, cancel, log := f.begin(ctx, "ChangePassword")
	defer cancel()

	if err := f.reset.ChangePassword(ctx, userID, in.CurrentPassword, in.NewPassword); err != nil {
		return finish(f, log, "change_password", fail[Empty](err))
	}
	return finish(f, log, "change_password", okMsg("Password changed. Please sign in again."))
}

// Me returns the summary of the signed-in user.
func (f *Facade) Me(ctx context.Context, userID string) Result[dto.UserSummary] {
	ctx, cancel, log := f.begin(ctx, "Me")
	defer cancel()

	u, err := f.creds.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return finish(f, log, "me", fail[dto.UserSummary](ErrUserNotFound))
		}
		return finish(f, log, "me", fail[dto.UserSummary](storeErr(err)))
	}
	role, err := roleName(ctx, f.creds, u.RoleID)
	if err != nil {
		return finish(f, log, "me", fail[dto.UserSummary](err))
	}
	s := summarize(u, role)
	return finish(f, log, "me", ok(http.StatusOK, "OK", &s))
}

// ResetHistory lists the signed-in user's recent reset attempts.
func (f *Facade) ResetHistory(ctx context.Context, userID string) Result[dto.ResetHistoryResponse] {
	ctx, cancel, log := f.begin(ctx, "ResetHistory")
	defer cancel()

	h, err := f.reset.History(ctx, userID)
	if err != nil {
		return finish(f, log, "reset_history", fail[dto.ResetHistoryResponse](err))
	}
	return finish(f, log, "reset_history", ok(http.StatusOK, "OK", h))
}

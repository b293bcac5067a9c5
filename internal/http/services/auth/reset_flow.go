package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/darrenak403/clothingshop-be/internal/audit"
	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	dto "github.com/darrenak403/clothingshop-be/internal/http/dto/auth"
	"github.com/darrenak403/clothingshop-be/internal/email"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
	"github.com/darrenak403/clothingshop-be/internal/security/password"
	"github.com/darrenak403/clothingshop-be/internal/security/token"
	"github.com/darrenak403/clothingshop-be/internal/validation"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// ResetConfig holds the OTP policy.
type ResetConfig struct {
	OTPLength   int
	OTPTTL      time.Duration
	DailyCap    int
	MaxAttempts int
}

func (c *ResetConfig) withDefaults() {
	if c.OTPLength <= 0 {
		c.OTPLength = 6
	}
	if c.OTPTTL <= 0 {
		c.OTPTTL = 5 * time.Minute
	}
	if c.DailyCap <= 0 {
		c.DailyCap = 5
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
}

// ResetFlow runs forgot-password, OTP redemption and authenticated password change.
//
// Attempts are append-only: each forgot-password call inserts a row and expires the
// user's earlier pending rows. Expiry is decided by the clock, never by the stored status.
type ResetFlow struct {
	creds    repository.CredentialStore
	attempts repository.ResetAttemptStore
	notifier email.Notifier
	hasher   PasswordHasher
	policy   password.Policy
	gen      token.Generator
	cfg      ResetConfig
	now      func() time.Time
}

type ResetFlowDeps struct {
	Credentials repository.CredentialStore
	Attempts    repository.ResetAttemptStore
	Notifier    email.Notifier
	Hasher      PasswordHasher
	Policy      password.Policy
	Generator   token.Generator
	Config      ResetConfig
	Now         func() time.Time
}

func NewResetFlow(d ResetFlowDeps) *ResetFlow {
	if d.Now == nil {
		d.Now = time.Now
	}
	d.Config.withDefaults()
	return &ResetFlow{
		creds:    d.Credentials,
		attempts: d.Attempts,
		notifier: d.Notifier,
		hasher:   d.Hasher,
		policy:   d.Policy,
		gen:      d.Generator,
		cfg:      d.Config,
		now:      d.Now,
	}
}

func utcDayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ForgotPassword issues a new code for email and sends it. The send is bounded by ctx;
// if it fails or runs out of time the attempt is marked failed. A server that accepted
// the message in the last instant before the deadline may still deliver that code, and
// it will be rejected like any other failed one.
func (f *ResetFlow) ForgotPassword(ctx context.Context, rawEmail string) (*dto.ForgotPasswordResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ForgotPassword"))

	addr := validation.NormalizeEmail(rawEmail)
	if !validation.ValidEmail(addr) {
		v := &ValidationError{}
		v.add("email", "invalid")
		return nil, v
	}

	u, err := f.creds.GetByEmail(ctx, addr)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr(err)
	}
	log = log.With(logger.UserID(u.ID))

	otp, err := f.gen.OTP(f.cfg.OTPLength)
	if err != nil {
		return nil, fmt.Errorf("%w: otp: %v", ErrInternal, err)
	}
	now := f.now().UTC()
	attempt, err := f.attempts.Issue(ctx, repository.IssueAttemptInput{
		UserID:      u.ID,
		OTP:         otp,
		GeneratedAt: now,
		ExpiresAt:   now.Add(f.cfg.OTPTTL),
		DailyCap:    f.cfg.DailyCap,
		DayStart:    utcDayStart(now),
	})
	if err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			log.Info("daily reset cap reached")
			return nil, ErrTooManyResetRequests
		}
		return nil, storeErr(err)
	}
	log = log.With(logger.AttemptID(attempt.ID))

	if err := f.notifier.SendOTP(ctx, u.Email, u.FullName, otp, f.cfg.OTPTTL); err != nil {
		log.Warn("otp delivery failed", logger.Err(err))
		f.markFailed(ctx, attempt.ID)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		return nil, ErrEmailDelivery
	}

	audit.Log(ctx, audit.EventResetCodeIssued, logger.UserID(u.ID), logger.AttemptID(attempt.ID), logger.Email(u.Email))
	return &dto.ForgotPasswordResponse{
		Email:      u.Email,
		ExpiresAt:  attempt.ExpiresAt,
		TTLMinutes: int(f.cfg.OTPTTL / time.Minute),
	}, nil
}

// markFailed runs even when the request context is already done, with its own deadline.
func (f *ResetFlow) markFailed(ctx context.Context, attemptID string) {
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := f.attempts.MarkFailed(mctx, attemptID); err != nil {
		logger.From(ctx).Error("mark attempt failed", logger.AttemptID(attemptID), logger.Err(err))
	}
}

// ResetPassword redeems a code and sets a new password. Every way the code can be
// wrong yields the same ErrOTPInvalidOrExpired.
func (f *ResetFlow) ResetPassword(ctx context.Context, rawEmail, otp, newPassword string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ResetPassword"))

	addr := validation.NormalizeEmail(rawEmail)
	otp = strings.TrimSpace(otp)
	v := &ValidationError{}
	if !validation.ValidEmail(addr) {
		v.add("email", "invalid")
	}
	if otp == "" {
		v.add("otp", "required")
	}
	if ok, reasons := f.policy.Validate(newPassword); !ok {
		v.add("newPassword", strings.Join(reasons, ","))
	}
	if err := v.orNil(); err != nil {
		return err
	}

	u, err := f.creds.GetByEmail(ctx, addr)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrUserNotFound
		}
		return storeErr(err)
	}
	log = log.With(logger.UserID(u.ID))

	now := f.now().UTC()
	attempt, err := f.attempts.FindLatestValid(ctx, u.ID, otp, now)
	if err != nil {
		if !repository.IsNotFound(err) {
			return storeErr(err)
		}
		f.recordFailedGuess(ctx, u.ID, otp)
		return ErrOTPInvalidOrExpired
	}

	hash, err := f.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: hash: %v", ErrInternal, err)
	}
	err = f.attempts.Redeem(ctx, repository.RedeemInput{
		AttemptID:    attempt.ID,
		UserID:       u.ID,
		PasswordHash: hash,
		At:           now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotRedeemable) {
			log.Info("attempt redeemed concurrently", logger.AttemptID(attempt.ID))
			return ErrOTPInvalidOrExpired
		}
		return storeErr(err)
	}

	audit.Log(ctx, audit.EventPasswordReset, logger.UserID(u.ID), logger.AttemptID(attempt.ID))
	return nil
}

func (f *ResetFlow) recordFailedGuess(ctx context.Context, userID, otp string) {
	a, err := f.attempts.RecordFailedGuess(ctx, userID, otp, f.cfg.MaxAttempts)
	switch {
	case err == nil:
		logger.From(ctx).Info("failed reset guess",
			logger.AttemptID(a.ID), logger.Count(a.AttemptCount), logger.String("status", string(a.Status)))
	case repository.IsNotFound(err):
	default:
		logger.From(ctx).Warn("record failed guess", logger.Err(err))
	}
}

// ChangePassword replaces the password of a signed-in user after checking the current one.
func (f *ResetFlow) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	if ok, reasons := f.policy.Validate(newPassword); !ok {
		v := &ValidationError{}
		v.add("newPassword", strings.Join(reasons, ","))
		return v
	}

	u, err := f.creds.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrUserNotFound
		}
		return storeErr(err)
	}
	if !f.hasher.Verify(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := f.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: hash: %v", ErrInternal, err)
	}
	if err := f.creds.UpdatePassword(ctx, u.ID, hash); err != nil {
		if repository.IsNotFound(err) {
			return ErrUserNotFound
		}
		return storeErr(err)
	}
	audit.Log(ctx, audit.EventPasswordChanged, logger.UserID(u.ID))
	return nil
}

// HistoryLimit caps GET /password-resets.
const HistoryLimit = 50

// History lists the user's newest attempts with their status as of now. Codes are omitted.
func (f *ResetFlow) History(ctx context.Context, userID string) (*dto.ResetHistoryResponse, error) {
	list, err := f.attempts.ListByUser(ctx, userID, HistoryLimit)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr(err)
	}
	now := f.now().UTC()
	out := &dto.ResetHistoryResponse{Items: make([]dto.ResetAttemptItem, 0, len(list))}
	for i := range list {
		a := &list[i]
		out.Items = append(out.Items, dto.ResetAttemptItem{
			ID:           a.ID,
			GeneratedAt:  a.GeneratedAt,
			ExpiresAt:    a.ExpiresAt,
			UsedAt:       a.UsedAt,
			AttemptCount: a.AttemptCount,
			Status:       string(a.EffectiveStatus(now)),
		})
	}
	return out, nil
}

package repository

import (
	"context"
	"time"
)

// AttemptStatus is a cached view; time is authoritative for expiry.
type AttemptStatus string

const (
	AttemptPending AttemptStatus = "pending"
	AttemptUsed    AttemptStatus = "used"
	AttemptExpired AttemptStatus = "expired"
	AttemptFailed  AttemptStatus = "failed"
)

// ResetAttempt is one OTP challenge. Rows are append-only per request.
type ResetAttempt struct {
	ID           string
	UserID       string
	OTP          string
	GeneratedAt  time.Time
	ExpiresAt    time.Time
	Used         bool
	UsedAt       *time.Time
	AttemptCount int
	Status       AttemptStatus
}

// EffectiveStatus folds lazy expiry into the stored status.
func (a *ResetAttempt) EffectiveStatus(now time.Time) AttemptStatus {
	if a.Used {
		return AttemptUsed
	}
	if a.Status == AttemptPending && !now.Before(a.ExpiresAt) {
		return AttemptExpired
	}
	return a.Status
}

// Redeemable reports whether the attempt can still authorize a reset at now.
func (a *ResetAttempt) Redeemable(now time.Time) bool {
	return a.Status == AttemptPending && !a.Used && now.Before(a.ExpiresAt)
}

// IssueAttemptInput describes a new challenge plus the cap it must respect.
type IssueAttemptInput struct {
	UserID      string
	OTP         string
	GeneratedAt time.Time
	ExpiresAt   time.Time

	// DailyCap is the maximum number of attempts generated since DayStart.
	DailyCap int
	DayStart time.Time
}

// RedeemInput consumes an attempt and applies the new password to its user.
type RedeemInput struct {
	AttemptID    string
	UserID       string
	PasswordHash string
	At           time.Time
}

// ResetAttemptStore is the persistence contract for OTP challenges.
type ResetAttemptStore interface {
	// Issue counts the user's attempts since DayStart, fails with ErrLimitReached at the
	// cap, expires older pending attempts and inserts the new one, all atomically.
	Issue(ctx context.Context, in IssueAttemptInput) (*ResetAttempt, error)

	// FindLatestValid returns the newest redeemable attempt for (user, otp) or ErrNotFound.
	FindLatestValid(ctx context.Context, userID, otp string, now time.Time) (*ResetAttempt, error)

	// RecordFailedGuess bumps attempt_count on the newest unused attempt carrying otp,
	// or failing that on the user's newest pending attempt, and marks it failed once the
	// count reaches maxAttempts. ErrNotFound if the user has neither.
	RecordFailedGuess(ctx context.Context, userID, otp string, maxAttempts int) (*ResetAttempt, error)

	MarkFailed(ctx context.Context, attemptID string) error

	// Redeem marks the attempt used only if it is still redeemable at in.At, and in the
	// same transaction writes the password hash and clears the user's refresh token.
	// Returns ErrNotRedeemable when the conditional update matched nothing.
	Redeem(ctx context.Context, in RedeemInput) error

	// ListByUser returns the newest attempts first.
	ListByUser(ctx context.Context, userID string, limit int) ([]ResetAttempt, error)
}

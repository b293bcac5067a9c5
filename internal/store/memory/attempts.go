package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
)

type attemptStore struct{ db *DB }

func (s *attemptStore) Issue(ctx context.Context, in repository.IssueAttemptInput) (*repository.ResetAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[in.UserID]; !ok {
		return nil, repository.ErrNotFound
	}
	if in.DailyCap > 0 && s.countSinceLocked(in.UserID, in.DayStart) >= in.DailyCap {
		return nil, repository.ErrLimitReached
	}

	for _, a := range s.db.attempts {
		if a.UserID == in.UserID && a.Status == repository.AttemptPending && !a.Used {
			a.Status = repository.AttemptExpired
		}
	}

	a := &repository.ResetAttempt{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		OTP:         in.OTP,
		GeneratedAt: in.GeneratedAt,
		ExpiresAt:   in.ExpiresAt,
		Status:      repository.AttemptPending,
	}
	s.db.attempts = append(s.db.attempts, a)
	return cloneAttempt(a), nil
}

func (s *attemptStore) countSinceLocked(userID string, since time.Time) int {
	n := 0
	for _, a := range s.db.attempts {
		if a.UserID == userID && !a.GeneratedAt.Before(since) {
			n++
		}
	}
	return n
}

func (s *attemptStore) FindLatestValid(ctx context.Context, userID, otp string, now time.Time) (*repository.ResetAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a := s.newestLocked(func(a *repository.ResetAttempt) bool {
		return a.UserID == userID && a.OTP == otp && a.Redeemable(now)
	})
	if a == nil {
		return nil, repository.ErrNotFound
	}
	return cloneAttempt(a), nil
}

func (s *attemptStore) RecordFailedGuess(ctx context.Context, userID, otp string, maxAttempts int) (*repository.ResetAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a := s.newestLocked(func(a *repository.ResetAttempt) bool {
		return a.UserID == userID && a.OTP == otp && !a.Used
	})
	if a == nil {
		a = s.newestLocked(func(a *repository.ResetAttempt) bool {
			return a.UserID == userID && a.Status == repository.AttemptPending && !a.Used
		})
	}
	if a == nil {
		return nil, repository.ErrNotFound
	}
	a.AttemptCount++
	if a.AttemptCount >= maxAttempts {
		a.Status = repository.AttemptFailed
	}
	return cloneAttempt(a), nil
}

func (s *attemptStore) MarkFailed(ctx context.Context, attemptID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, a := range s.db.attempts {
		if a.ID == attemptID {
			if !a.Used {
				a.Status = repository.AttemptFailed
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *attemptStore) Redeem(ctx context.Context, in repository.RedeemInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var target *repository.ResetAttempt
	for _, a := range s.db.attempts {
		if a.ID == in.AttemptID && a.UserID == in.UserID {
			target = a
			break
		}
	}
	if target == nil || !target.Redeemable(in.At) {
		return repository.ErrNotRedeemable
	}
	u, ok := s.db.users[in.UserID]
	if !ok {
		return repository.ErrNotFound
	}

	at := in.At
	target.Used = true
	target.UsedAt = &at
	target.Status = repository.AttemptUsed
	u.PasswordHash = in.PasswordHash
	clearToken(u)
	return nil
}

func (s *attemptStore) ListByUser(ctx context.Context, userID string, limit int) ([]repository.ResetAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []repository.ResetAttempt
	for i := len(s.db.attempts) - 1; i >= 0; i-- {
		a := s.db.attempts[i]
		if a.UserID != userID {
			continue
		}
		out = append(out, *cloneAttempt(a))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// newestLocked scans from the tail, which is generation order.
func (s *attemptStore) newestLocked(match func(*repository.ResetAttempt) bool) *repository.ResetAttempt {
	for i := len(s.db.attempts) - 1; i >= 0; i-- {
		if match(s.db.attempts[i]) {
			return s.db.attempts[i]
		}
	}
	return nil
}

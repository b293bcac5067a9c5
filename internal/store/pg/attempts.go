package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
)

type attemptStore struct {
	pool *pgxpool.Pool
}

const attemptColumns = `id::text, user_id::text, otp, generated_at, expires_at, used, used_at, attempt_count, status`

func scanAttempt(row pgx.Row) (*repository.ResetAttempt, error) {
	var (
		a      repository.ResetAttempt
		status string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.OTP, &a.GeneratedAt, &a.ExpiresAt, &a.Used, &a.UsedAt, &a.AttemptCount, &status)
	if err != nil {
		return nil, mapErr(err)
	}
	a.Status = repository.AttemptStatus(status)
	return &a, nil
}

func (s *attemptStore) Issue(ctx context.Context, in repository.IssueAttemptInput) (*repository.ResetAttempt, error) {
	userID, err := parseID(in.UserID)
	if err != nil {
		return nil, err
	}

	var out *repository.ResetAttempt
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Row lock on the user serializes concurrent issues for the same account.
		var one int
		if err := tx.QueryRow(ctx, `SELECT 1 FROM app_user WHERE id = $1 FOR UPDATE`, userID).Scan(&one); err != nil {
			return mapErr(err)
		}

		if in.DailyCap > 0 {
			var n int
			err := tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM password_reset_attempt WHERE user_id = $1 AND generated_at >= $2`,
				userID, in.DayStart).Scan(&n)
			if err != nil {
				return err
			}
			if n >= in.DailyCap {
				return repository.ErrLimitReached
			}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE password_reset_attempt SET status = 'expired'
			WHERE user_id = $1 AND status = 'pending' AND used = FALSE`, userID); err != nil {
			return err
		}

		a, err := scanAttempt(tx.QueryRow(ctx, `
			INSERT INTO password_reset_attempt (id, user_id, otp, generated_at, expires_at, status)
			VALUES ($1, $2, $3, $4, $5, 'pending')
			RETURNING `+attemptColumns,
			uuid.New(), userID, in.OTP, in.GeneratedAt, in.ExpiresAt))
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *attemptStore) FindLatestValid(ctx context.Context, userID, otp string, now time.Time) (*repository.ResetAttempt, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return scanAttempt(s.pool.QueryRow(ctx, `
		SELECT `+attemptColumns+` FROM password_reset_attempt
		WHERE user_id = $1 AND otp = $2 AND status = 'pending' AND used = FALSE AND expires_at > $3
		ORDER BY generated_at DESC
		LIMIT 1`, id, otp, now))
}

func (s *attemptStore) RecordFailedGuess(ctx context.Context, userID, otp string, maxAttempts int) (*repository.ResetAttempt, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return scanAttempt(s.pool.QueryRow(ctx, `
		UPDATE password_reset_attempt
		SET attempt_count = attempt_count + 1,
		    status = CASE WHEN attempt_count + 1 >= $3 THEN 'failed' ELSE status END
		WHERE id = (
			SELECT id FROM password_reset_attempt
			WHERE user_id = $1 AND used = FALSE AND (otp = $2 OR status = 'pending')
			ORDER BY (otp = $2) DESC, generated_at DESC
			LIMIT 1
			FOR UPDATE
		)
		RETURNING `+attemptColumns, id, otp, maxAttempts))
}

func (s *attemptStore) MarkFailed(ctx context.Context, attemptID string) error {
	id, err := parseID(attemptID)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE password_reset_attempt SET status = 'failed'
		WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM password_reset_attempt WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (s *attemptStore) Redeem(ctx context.Context, in repository.RedeemInput) error {
	attemptID, err := parseID(in.AttemptID)
	if err != nil {
		return repository.ErrNotRedeemable
	}
	userID, err := parseID(in.UserID)
	if err != nil {
		return repository.ErrNotRedeemable
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE password_reset_attempt
			SET used = TRUE, used_at = $3, status = 'used'
			WHERE id = $1 AND user_id = $2 AND status = 'pending' AND used = FALSE AND expires_at > $3`,
			attemptID, userID, in.At)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotRedeemable
		}

		if err := execOne(ctx, tx, `
			UPDATE app_user
			SET password_hash = $2, refresh_token_hash = NULL, refresh_token_expires_at = NULL, updated_at = NOW()
			WHERE id = $1`, userID, in.PasswordHash); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("redeem: user vanished: %w", err)
			}
			return err
		}
		return nil
	})
}

func (s *attemptStore) ListByUser(ctx context.Context, userID string, limit int) ([]repository.ResetAttempt, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+attemptColumns+` FROM password_reset_attempt
		WHERE user_id = $1
		ORDER BY generated_at DESC
		LIMIT $2`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.ResetAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResetAttempt_EffectiveStatus(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	base := ResetAttempt{GeneratedAt: now.Add(-time.Minute), ExpiresAt: now.Add(4 * time.Minute), Status: AttemptPending}

	live := base
	assert.Equal(t, AttemptPending, live.EffectiveStatus(now))
	assert.True(t, live.Redeemable(now))

	// status column still says pending but the clock says otherwise
	assert.Equal(t, AttemptExpired, live.EffectiveStatus(now.Add(4*time.Minute)))
	assert.False(t, live.Redeemable(now.Add(4*time.Minute)))

	used := base
	used.Used = true
	used.Status = AttemptUsed
	assert.Equal(t, AttemptUsed, used.EffectiveStatus(now.Add(time.Hour)))
	assert.False(t, used.Redeemable(now))

	failed := base
	failed.Status = AttemptFailed
	failed.AttemptCount = 5
	assert.Equal(t, AttemptFailed, failed.EffectiveStatus(now))
	assert.False(t, failed.Redeemable(now))
}

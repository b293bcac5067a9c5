package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/darrenak403/clothingshop-be/internal/audit"
	"github.com/darrenak403/clothingshop-be/internal/domain/repository"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
	"github.com/darrenak403/clothingshop-be/internal/validation"
)

// SetActiveByEmail activates or deactivates the account with the given email.
// A deactivated account cannot log in or refresh; reason is kept as the lock reason.
func SetActiveByEmail(ctx context.Context, creds repository.CredentialStore, email string, active bool, reason string) (*repository.User, error) {
	u, err := creds.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}

	var r *string
	if reason = strings.TrimSpace(reason); reason != "" && !active {
		r = &reason
	}
	if err := creds.SetActive(ctx, u.ID, active, r); err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}
	event := audit.EventAccountActivated
	if !active {
		event = audit.EventAccountDisabled
	}
	audit.Log(ctx, event, logger.Component("bootstrap"), logger.UserID(u.ID))
	return creds.GetByID(ctx, u.ID)
}

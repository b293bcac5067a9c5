// Package audit records security-relevant account events on a dedicated "audit" logger.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
)

const (
	EventResetCodeIssued  = "reset_code_issued"
	EventPasswordReset    = "password_reset"
	EventPasswordChanged  = "password_changed"
	EventAdminCreated     = "admin_created"
	EventAccountActivated = "account_activated"
	EventAccountDisabled  = "account_deactivated"
)

// Log writes one event through the request-scoped logger, so request_id is carried along.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append(fields, zap.String("event", event))...)
}

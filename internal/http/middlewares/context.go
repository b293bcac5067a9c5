package middlewares

import (
	"context"

	jwtx "github.com/darrenak403/clothingshop-be/internal/jwt"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims stores verified access-token claims in ctx.
func WithClaims(ctx context.Context, c *jwtx.AccessClaims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, c)
}

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, id)
}

// GetClaims returns nil when RequireAuth did not run.
func GetClaims(ctx context.Context) *jwtx.AccessClaims {
	c, _ := ctx.Value(ctxClaimsKey).(*jwtx.AccessClaims)
	return c
}

// GetUserID is the subject of the verified access token, or "".
func GetUserID(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.Subject
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}

package middlewares

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/darrenak403/clothingshop-be/internal/http/errors"
	jwtx "github.com/darrenak403/clothingshop-be/internal/jwt"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
)

// RequireAuth verifies the bearer access token and stores its claims in the context.
// Failures answer 401 with a WWW-Authenticate challenge.
func RequireAuth(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("missing bearer token"))
				return
			}

			claims, err := issuer.Parse(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				if stderrors.Is(err, jwtx.ErrExpired) {
					errors.WriteError(w, errors.ErrTokenExpired)
					return
				}
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("invalid token"))
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(claims.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}

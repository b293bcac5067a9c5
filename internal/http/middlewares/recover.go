package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/darrenak403/clothingshop-be/internal/http/errors"
	"github.com/darrenak403/clothingshop-be/internal/observability/logger"
)

// WithRecover turns a panic into a 500 envelope.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered",
						logger.Op("recover"),
						logger.Any("panic", rec),
						logger.String("stack", string(debug.Stack())),
					)
					errors.WriteError(w, errors.ErrInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

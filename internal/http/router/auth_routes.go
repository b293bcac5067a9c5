package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/darrenak403/clothingshop-be/internal/http/middlewares"
)

// registerAuthRoutes mounts /api/auth. Login and forgot-password are rate limited
// per client IP; the last three routes need a bearer access token.
func registerAuthRoutes(r chi.Router, d Deps) {
	c := d.Auth

	r.Post("/register", c.Account.Register)
	r.With(limited(d, d.Login)).Post("/login", c.Account.Login)
	r.Post("/refresh-token", c.Account.Refresh)
	r.Post("/logout", c.Account.Logout)
	r.With(limited(d, d.Forgot)).Post("/forgot-password", c.Password.Forgot)
	r.Post("/change-password", c.Password.Reset)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth(d.Issuer))
		r.Post("/auth/change-password", c.Password.Change)
		r.Get("/me", c.Me.Me)
		r.Get("/password-resets", c.Password.History)
	})
}

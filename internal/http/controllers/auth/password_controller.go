package auth

import (
	"net/http"

	dto "github.com/darrenak403/clothingshop-be/internal/http/dto/auth"
	"github.com/darrenak403/clothingshop-be/internal/http/helpers"
	mw "github.com/darrenak403/clothingshop-be/internal/http/middlewares"
)

// PasswordController serves the reset-code flow and authenticated password change.
type PasswordController struct {
	facade Facade
}

func NewPasswordController(f Facade) *PasswordController {
	return &PasswordController{facade: f}
}

// Forgot handles POST /api/auth/forgot-password.
func (c *PasswordController) Forgot(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	writeResult(w, c.facade.ForgotPassword(r.Context(), req))
}

// Reset handles POST /api/auth/change-password, which redeems an emailed code.
func (c *PasswordController) Reset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	writeResult(w, c.facade.ResetPassword(r.Context(), req))
}

// Change handles POST /api/auth/auth/change-password for a signed-in user.
func (c *PasswordController) Change(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	writeResult(w, c.facade.ChangePassword(r.Context(), mw.GetUserID(r.Context()), req))
}

// History handles GET /api/auth/password-resets.
func (c *PasswordController) History(w http.ResponseWriter, r *http.Request) {
	writeResult(w, c.facade.ResetHistory(r.Context(), mw.GetUserID(r.Context())))
}

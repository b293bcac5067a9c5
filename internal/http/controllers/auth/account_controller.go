package auth

import (
	"net/http"

	dto "github.com/darrenak403/clothingshop-be/internal/http/dto/auth"
	"github.com/darrenak403/clothingshop-be/internal/http/helpers"
)

// AccountController serves register, login, refresh-token and logout.
type AccountController struct {
	facade Facade
}

func NewAccountController(f Facade) *AccountController {
	return &AccountController{facade: f}
}

// Register handles POST /api/auth/register.
func (c *AccountController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	writeResult(w, c.facade.Register(r.Context(), req))
}

// Login handles POST /api/auth/login.
func (c *AccountController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	writeResult(w, c.facade.Login(r.Context(), req))
}

// Refresh handles POST /api/auth/refresh-token.
func (c *AccountController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	writeResult(w, c.facade.RefreshToken(r.Context(), req))
}

// Logout handles POST /api/auth/logout.
func (c *AccountController) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.LogoutRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	writeResult(w, c.facade.Logout(r.Context(), req))
}

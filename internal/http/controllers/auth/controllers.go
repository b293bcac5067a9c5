// Package auth holds the /api/auth controllers. They decode the request, call the
// facade and write its Result as-is.
package auth

import (
	"context"
	"net/http"

	dto "github.com/darrenak403/clothingshop-be/internal/http/dto/auth"
	"github.com/darrenak403/clothingshop-be/internal/http/helpers"
	svc "github.com/darrenak403/clothingshop-be/internal/http/services/auth"
)

// Facade is the subset of svc.Facade the controllers call.
type Facade interface {
	Register(ctx context.Context, in dto.RegisterRequest) svc.Result[dto.UserSummary]
	Login(ctx context.Context, in dto.LoginRequest) svc.Result[dto.TokenResponse]
	RefreshToken(ctx context.Context, in dto.RefreshRequest) svc.Result[dto.TokenResponse]
	Logout(ctx context.Context, in dto.LogoutRequest) svc.Result[svc.Empty]
	ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) svc.Result[dto.ForgotPasswordResponse]
	ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) svc.Result[svc.Empty]
	ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) svc.Result[svc.Empty]
	Me(ctx context.Context, userID string) svc.Result[dto.UserSummary]
	ResetHistory(ctx context.Context, userID string) svc.Result[dto.ResetHistoryResponse]
}

// Controllers groups the auth controllers.
type Controllers struct {
	Account  *AccountController
	Password *PasswordController
	Me       *MeController
}

func NewControllers(f Facade) *Controllers {
	return &Controllers{
		Account:  NewAccountController(f),
		Password: NewPasswordController(f),
		Me:       NewMeController(f),
	}
}

func writeResult[T any](w http.ResponseWriter, r svc.Result[T]) {
	helpers.WriteJSON(w, r.Status, r)
}

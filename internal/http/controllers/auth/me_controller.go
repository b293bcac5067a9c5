package auth

import (
	"net/http"

	mw "github.com/darrenak403/clothingshop-be/internal/http/middlewares"
)

type MeController struct {
	facade Facade
}

func NewMeController(f Facade) *MeController {
	return &MeController{facade: f}
}

// Me handles GET /api/auth/me.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	writeResult(w, c.facade.Me(r.Context(), mw.GetUserID(r.Context())))
}

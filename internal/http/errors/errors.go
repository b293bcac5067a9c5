package errors

import (
	"encoding/json"
	"net/http"
)

// envelope mirrors the services' Result shape.
type envelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error,omitempty"`
}

// WriteError writes err as a failed envelope. Non-AppErrors become 500s.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Status:  appErr.HTTPStatus,
		Message: appErr.Message,
		Code:    appErr.Code,
		Error:   appErr.Detail,
	})
}

package auth

import "net/http"

// Result is the uniform outcome of every facade operation. It is also the JSON body
// written to clients.
type Result[T any] struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	// Err is the classified failure, for logging and metrics. Never serialized.
	Err error `json:"-"`
}

// Empty is the payload type of operations that return no data.
type Empty struct{}

func ok[T any](status int, msg string, data *T) Result[T] {
	return Result[T]{Success: true, Status: status, Message: msg, Data: data}
}

func okMsg(msg string) Result[Empty] {
	return Result[Empty]{Success: true, Status: http.StatusOK, Message: msg}
}

// fail converts err into a failed Result. Only the classified message and, for
// validation failures, the field reasons reach the client.
func fail[T any](err error) Result[T] {
	e := Classify(err)
	r := Result[T]{
		Success: false,
		Status:  e.Kind.HTTPStatus(),
		Message: e.Message,
		Code:    e.Code,
		Error:   e.Kind.String(),
		Err:     err,
	}
	if v, isV := asValidation(err); isV {
		r.Error = v.Detail()
	}
	return r
}

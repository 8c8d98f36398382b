package errors

import "net/http"

var ErrInvalidStatus = &Exception{
	Message:    "status must be one of: todo, done",
	StatusCode: http.StatusBadRequest,
}

package errors

import "net/http"

var ErrInvalidCursor = &Exception{
	Message:    "invalid cursor",
	StatusCode: http.StatusBadRequest,
}

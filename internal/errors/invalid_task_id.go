package errors

import "net/http"

var ErrInvalidTaskID = &Exception{
	Message:    "task id must be a valid UUID",
	StatusCode: http.StatusBadRequest,
}

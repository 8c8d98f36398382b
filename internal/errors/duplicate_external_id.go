package errors

import "net/http"

var ErrDuplicateExternalID = &Exception{
	Message:    "a task with this external_id already exists",
	StatusCode: http.StatusConflict,
}

package errors

import "net/http"

var ErrClientIDRequired = &Exception{
	Message:    "client_id is required",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidClientID = &Exception{
	Message:    "client_id must be a valid UUID",
	StatusCode: http.StatusBadRequest,
}

var ErrClientNotFound = &Exception{
	Message:    "client does not exist",
	StatusCode: http.StatusBadRequest,
}

package errors

import "net/http"

var ErrTitleRequired = &Exception{
	Message:    "title cannot be empty",
	StatusCode: http.StatusBadRequest,
}

var ErrTitleTooLong = &Exception{
	Message:    "title must be at most 500 characters",
	StatusCode: http.StatusBadRequest,
}

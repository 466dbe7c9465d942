package main

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidAction  = errors.New("Invalid action")
	ErrInvalidPayload = errors.New("Invalid JSON")
	ErrNotFound       = errors.New("Message not found")
	ErrUnauthorized   = errors.New("Password does not match")
)

// fieldError reports a payload that parsed but failed validation. It matches
// ErrInvalidPayload with errors.Is.
type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

func (e *fieldError) Is(target error) bool { return target == ErrInvalidPayload }

// errorResponse maps an error to the status code and message returned to the
// page. Storage failures are not described to the caller.
func errorResponse(err error) (int, string) {
	var fe *fieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, fe.msg
	case errors.Is(err, ErrInvalidAction):
		return http.StatusBadRequest, ErrInvalidAction.Error()
	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest, ErrInvalidPayload.Error()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrNotFound.Error()
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, ErrUnauthorized.Error()
	default:
		return http.StatusInternalServerError, "Something went wrong, please try again"
	}
}

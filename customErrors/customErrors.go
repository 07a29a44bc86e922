package customErrors

import (
	"errors"
	"fmt"
)

const (
	ErrNotFound       = "NOT FOUND"
	ErrInvalidInput   = "INVALID INPUT"
	ErrInvalidValue   = "INVALID VALUE"
	ErrAuth           = "UNAUTHORIZED"
	ErrAccessDenied   = "ACCESS DENIED"
	ErrConflict       = "CONFLICT"
	ErrPeriodLocked   = "PERIOD LOCKED"
	ErrDuplicateLimit = "DUPLICATE LIMIT"
	ErrInternal       = "INTERNAL"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}

func New(code string, format string, args ...any) ErrorResponse {
	return ErrorResponse{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the code of the first ErrorResponse in err's chain, or ErrInternal.
func CodeOf(err error) string {
	var appErr ErrorResponse
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	var appErr ErrorResponse
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// MessageOf returns the user facing message, hiding unknown errors.
func MessageOf(err error) string {
	var appErr ErrorResponse
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong, try again later."
}

package apperr

import (
	"errors"
	"net/http"

	"github.com/huynhanx03/servicequeue/pkg/common/http/response"
)

// AppError is an error that knows how it should be reported to a client.
type AppError struct {
	Code       int
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// New creates an AppError.
func New(code int, msg string, httpStatus int, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: httpStatus,
		Cause:      cause,
	}
}

// Wrap attaches an application code and message to err. Returns nil for a nil err.
func Wrap(err error, code int, msg string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return New(code, msg, httpStatus, err)
}

// As returns the AppError in err's chain, or an internal server error wrapping err.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(response.CodeInternalServer, response.Message(response.CodeInternalServer), http.StatusInternalServerError, err)
}

package apperr

import (
	"fmt"
)

// Queue action messages
const (
	MsgEmpty         = "is empty"
	MsgRejected      = "rejected the item"
	MsgIntegrity     = "integrity check failed"
	MsgUnknownPolicy = "policy is not supported"
	MsgProcessFailed = "failed to process"
)

// MapError wraps an error with a standardized message
func MapError(serviceName string, err error, code int, msg string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}

	formattedMsg := fmt.Sprintf("%s %s", serviceName, msg)
	return Wrap(err, code, formattedMsg, httpStatus)
}

// NewError creates a new AppError with standardized message format
func NewError(serviceName string, code int, msg string, httpStatus int, cause error) *AppError {
	formattedMsg := fmt.Sprintf("%s %s", serviceName, msg)
	return New(code, formattedMsg, httpStatus, cause)
}

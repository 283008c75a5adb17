package response

import "net/http"

// Application codes carried in the response envelope.
const (
	CodeSuccess = 20000
	CodeCreated = 20100

	CodeBadRequest       = 40000
	CodeParamInvalid     = 40001
	CodeValidationFailed = 42200
	CodeNotFound         = 40400
	CodeQueueEmpty       = 40401
	CodeIntegrity        = 40901

	CodeInternalServer = 50000
	CodeInternalError  = 50001
)

var messages = map[int]string{
	CodeSuccess:          "success",
	CodeCreated:          "created",
	CodeBadRequest:       "bad request",
	CodeParamInvalid:     "invalid parameters",
	CodeValidationFailed: "validation failed",
	CodeNotFound:         "not found",
	CodeQueueEmpty:       "queue is empty",
	CodeIntegrity:        "integrity mismatch",
	CodeInternalServer:   "internal server error",
	CodeInternalError:    "internal error",
}

// Message returns the default message for code.
func Message(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[CodeInternalServer]
}

// Status derives the HTTP status from an application code (its first three digits).
func Status(code int) int {
	status := code / 100
	if http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}

package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// SuccessResponse writes data with the status derived from code.
func SuccessResponse(c *gin.Context, code int, data any) {
	c.JSON(Status(code), Response{
		Code:    code,
		Message: Message(code),
		Data:    data,
	})
}

// ErrorResponse aborts with the status derived from code. detail may be an
// error, a string, or nil for the code's default message.
func ErrorResponse(c *gin.Context, code int, detail any) {
	ErrorWithStatus(c, Status(code), code, detailMessage(code, detail))
}

// ErrorWithStatus aborts with an explicit HTTP status.
func ErrorWithStatus(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// ToErrorResponse flattens validator errors into "field: rule" pairs.
// Other errors are returned as their message.
func ToErrorResponse(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), rule))
	}
	return strings.Join(parts, ", ")
}

func detailMessage(code int, detail any) string {
	switch d := detail.(type) {
	case nil:
		return Message(code)
	case string:
		return d
	case error:
		return d.Error()
	default:
		return fmt.Sprint(d)
	}
}

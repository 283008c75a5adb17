package request

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/huynhanx03/servicequeue/pkg/common/apperr"
	"github.com/huynhanx03/servicequeue/pkg/common/http/response"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ParseRequest binds the JSON body into T and validates its `validate` tags.
// Requests without a body bind to the zero T.
func ParseRequest[T any](c *gin.Context) (*T, error) {
	var req T
	if c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, apperr.New(response.CodeParamInvalid, response.ToErrorResponse(err), http.StatusBadRequest, err)
		}
	}

	if err := validatorInstance().Struct(req); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return &req, nil
		}
		return nil, apperr.New(response.CodeValidationFailed, response.ToErrorResponse(err), http.StatusUnprocessableEntity, err)
	}

	return &req, nil
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/servicequeue/pkg/common/apperr"
	"github.com/huynhanx03/servicequeue/pkg/common/http/request"
	"github.com/huynhanx03/servicequeue/pkg/common/http/response"
)

// HandlerFunc is the generic function signature
type HandlerFunc[T any, R any] func(context.Context, *T) (R, error)

// Wrap converts a generic handler to a Gin handler answering 200 on success
func Wrap[T any, R any](h HandlerFunc[T, R]) gin.HandlerFunc {
	return wrap(h, response.CodeSuccess)
}

// WrapCreated is Wrap for handlers that create a resource (201)
func WrapCreated[T any, R any](h HandlerFunc[T, R]) gin.HandlerFunc {
	return wrap(h, response.CodeCreated)
}

func wrap[T any, R any](h HandlerFunc[T, R], code int) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := request.ParseRequest[T](c)
		if err != nil {
			abort(c, err)
			return
		}

		res, err := h(c.Request.Context(), req)
		if err != nil {
			abort(c, err)
			return
		}

		response.SuccessResponse(c, code, res)
	}
}

func abort(c *gin.Context, err error) {
	appErr := apperr.As(err)
	_ = c.Error(err)
	response.ErrorWithStatus(c, appErr.HTTPStatus, appErr.Code, appErr.Message)
}

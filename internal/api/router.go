package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/huynhanx03/servicequeue/pkg/common/http/handler"
	"github.com/huynhanx03/servicequeue/pkg/common/http/response"
)

// Register mounts the queue routes under /v1/queue.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/v1/queue")
	g.GET("", handler.Wrap(h.State))
	g.POST("/items", handler.WrapCreated(h.Enqueue))
	g.POST("/dequeue", handler.Wrap(h.Dequeue))
	g.GET("/peek", handler.Wrap(h.Peek))
	g.GET("/checkpoint", handler.Wrap(h.Checkpoint))
	g.POST("/verify", handler.Wrap(h.Verify))
}

// NewRouter builds a gin engine serving h with recovery, access logging and /healthz.
// Panics and unknown routes answer with the standard envelope.
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(accessLog(h.logger), gin.CustomRecovery(recovered(h.logger)))
	r.NoRoute(func(c *gin.Context) {
		response.ErrorResponse(c, response.CodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	h.Register(r)
	return r
}

func recovered(logger *zap.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, err any) {
		logger.Error("handler panic", zap.Any("panic", err), zap.String("path", c.Request.URL.Path))
		response.ErrorResponse(c, response.CodeInternalError, nil)
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}
		logger.Info("http request", fields...)
	}
}

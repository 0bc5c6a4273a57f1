package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/apperr"
	"go.uber.org/zap"
)

// Recovery returns a Gin middleware that catches panics, logs them with a
// stack, and returns HTTP 500.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("error", r),
					zap.String("trace_id", GetTraceID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				abort(c, http.StatusInternalServerError, apperr.CodeInternal.String(), "internal error")
			}
		}()
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/KOMKZ/yogan-vehicle-api/errcode"
	"github.com/KOMKZ/yogan-vehicle-api/httpx"
	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 500 envelope. The panic value is logged, not returned.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorCtx(c.Request.Context(), "http", "panic recovered",
					zap.String("panic", fmt.Sprint(r)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("stack", string(debug.Stack())),
				)
				httpx.HandleError(c, errcode.ErrInternal)
			}
		}()
		c.Next()
	}
}

package httpx

import (
	"github.com/gin-gonic/gin"
)

const errorLoggingConfigKey = "httpx:error_logging_config"

type errorLogging struct {
	enable         bool
	ignore         map[int]bool
	fullErrorChain bool
	level          string
}

// ErrorLoggingMiddleware stores cfg on the context for HandleError.
func ErrorLoggingMiddleware(cfg ErrorLoggingConfig) gin.HandlerFunc {
	ignore := make(map[int]bool, len(cfg.IgnoreHTTPStatus))
	for _, status := range cfg.IgnoreHTTPStatus {
		ignore[status] = true
	}
	el := errorLogging{
		enable:         cfg.Enable,
		ignore:         ignore,
		fullErrorChain: cfg.FullErrorChain,
		level:          cfg.LogLevel,
	}

	return func(c *gin.Context) {
		c.Set(errorLoggingConfigKey, el)
		c.Next()
	}
}

// errorLoggingFrom falls back to logging disabled when the middleware is absent.
func errorLoggingFrom(c *gin.Context) errorLogging {
	if val, ok := c.Get(errorLoggingConfigKey); ok {
		if el, ok := val.(errorLogging); ok {
			return el
		}
	}
	return errorLogging{ignore: map[int]bool{}, level: "error"}
}

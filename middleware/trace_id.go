// Package middleware holds the gin middleware chain of the HTTP server.
package middleware

import (
	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
)

type TraceConfig struct {
	// Header carrying an incoming trace id, echoed on the response.
	Header string

	EnableResponseHeader bool

	// Generator defaults to a random UUID.
	Generator func() string
}

func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		Header:               TraceIDHeader,
		EnableResponseHeader: true,
		Generator:            func() string { return uuid.New().String() },
	}
}

// TraceID picks the trace id of the request: the active OpenTelemetry span if any,
// then the request header, then a fresh one. It is stored on the gin context and,
// through logger.WithTraceID, on the request context so every log line carries it.
func TraceID(cfg TraceConfig) gin.HandlerFunc {
	if cfg.Header == "" {
		cfg.Header = TraceIDHeader
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string { return uuid.New().String() }
	}

	return func(c *gin.Context) {
		var traceID string
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
			traceID = sc.TraceID().String()
		} else {
			traceID = c.GetHeader(cfg.Header)
			if traceID == "" {
				traceID = cfg.Generator()
			}
			c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		}

		c.Set(TraceIDKey, traceID)
		if cfg.EnableResponseHeader {
			c.Writer.Header().Set(cfg.Header, traceID)
		}
		c.Next()
	}
}

// GetTraceID returns the id set by TraceID, or "".
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}

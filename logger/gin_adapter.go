package logger

import (
	"strings"
)

// GinLogWriter adapts gin's text output (route registration, recovery) to a module logger.
type GinLogWriter struct {
	module string
}

func NewGinLogWriter(module string) *GinLogWriter {
	return &GinLogWriter{module: module}
}

func (w *GinLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	switch {
	case strings.Contains(msg, "[GIN-debug]"):
		Debug(w.module, msg)
	case strings.Contains(msg, "[Recovery]"), strings.Contains(msg, "panic recovered"):
		Error(w.module, msg)
	default:
		Info(w.module, msg)
	}
	return len(p), nil
}

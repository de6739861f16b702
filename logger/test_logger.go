package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestCtxLogger records entries in memory so tests can assert on them.
//
//	log := logger.NewTestCtxLogger()
//	coord := cache.NewCoordinator(repo, store, cfg, log)
//	...
//	assert.True(t, log.HasLog("WARN", "cache get failed, loading from store"))
type TestCtxLogger struct {
	mu   sync.RWMutex
	logs []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
	TraceID string
	Fields  map[string]interface{}
}

func NewTestCtxLogger() *TestCtxLogger {
	return &TestCtxLogger{}
}

func (t *TestCtxLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "DEBUG", msg, fields)
}

func (t *TestCtxLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "INFO", msg, fields)
}

func (t *TestCtxLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "WARN", msg, fields)
}

func (t *TestCtxLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "ERROR", msg, fields)
}

func (t *TestCtxLogger) record(ctx context.Context, level, msg string, fields []zap.Field) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logs = append(t.logs, LogEntry{
		Level:   level,
		Message: msg,
		TraceID: TraceIDFromContext(ctx),
		Fields:  fieldsToMap(fields),
	})
}

// HasLog reports whether an entry with level and message was recorded.
func (t *TestCtxLogger) HasLog(level, message string) bool {
	return t.CountLogs(level, message) > 0
}

// CountLogs counts entries with level and message.
func (t *TestCtxLogger) CountLogs(level, message string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, e := range t.logs {
		if e.Level == level && e.Message == message {
			n++
		}
	}
	return n
}

// Logs returns a copy of the recorded entries.
func (t *TestCtxLogger) Logs() []LogEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]LogEntry, len(t.logs))
	copy(out, t.logs)
	return out
}

func (t *TestCtxLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = nil
}

func fieldsToMap(fields []zap.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}

package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func TestTestCtxLogger_Records(t *testing.T) {
	log := NewTestCtxLogger()
	ctx := WithTraceID(context.Background(), "trace-9")

	log.InfoCtx(ctx, "loaded", zap.Int("count", 3))
	log.WarnCtx(ctx, "degraded")
	log.WarnCtx(ctx, "degraded")

	assert.True(t, log.HasLog("INFO", "loaded"))
	assert.False(t, log.HasLog("ERROR", "loaded"))
	assert.Equal(t, 2, log.CountLogs("WARN", "degraded"))

	entries := log.Logs()
	assert.Len(t, entries, 3)
	assert.Equal(t, "trace-9", entries[0].TraceID)
	assert.Equal(t, int64(3), entries[0].Fields["count"])

	log.Clear()
	assert.Empty(t, log.Logs())
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT * FROM vehicle", 3 }

	t.Run("error", func(t *testing.T) {
		log := NewTestCtxLogger()
		g := NewGormLogger(DefaultGormLoggerConfig(), log)
		g.Trace(context.Background(), time.Now(), sql, errors.New("connection reset"))
		assert.True(t, log.HasLog("ERROR", "sql failed"))
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		log := NewTestCtxLogger()
		g := NewGormLogger(DefaultGormLoggerConfig(), log)
		g.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
		assert.False(t, log.HasLog("ERROR", "sql failed"))
	})

	t.Run("slow", func(t *testing.T) {
		log := NewTestCtxLogger()
		g := NewGormLogger(GormLoggerConfig{SlowThreshold: time.Millisecond, LogLevel: gormlogger.Warn}, log)
		g.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
		assert.True(t, log.HasLog("WARN", "slow sql"))
	})

	t.Run("info level logs every statement", func(t *testing.T) {
		log := NewTestCtxLogger()
		g := NewGormLogger(DefaultGormLoggerConfig(), log).LogMode(gormlogger.Info)
		g.Trace(context.Background(), time.Now(), sql, nil)
		assert.True(t, log.HasLog("DEBUG", "sql"))
	})

	t.Run("silent", func(t *testing.T) {
		log := NewTestCtxLogger()
		g := NewGormLogger(DefaultGormLoggerConfig(), log).LogMode(gormlogger.Silent)
		g.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
		assert.Empty(t, log.Logs())
	})
}

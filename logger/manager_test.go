package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestManagerConfig_ApplyDefaults(t *testing.T) {
	cfg := ManagerConfig{}
	cfg.ApplyDefaults()

	assert.Equal(t, "logs", cfg.BaseLogDir)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, "trace_id", cfg.TraceIDFieldName)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.False(t, cfg.EnableFile, "booleans keep their configured value")
	assert.NoError(t, cfg.Validate())
}

func TestManagerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ManagerConfig)
		wantErr bool
	}{
		{"defaults", func(c *ManagerConfig) {}, false},
		{"bad level", func(c *ManagerConfig) { c.Level = "verbose" }, true},
		{"bad encoding", func(c *ManagerConfig) { c.Encoding = "xml" }, true},
		{"file without dir", func(c *ManagerConfig) { c.BaseLogDir = "" }, true},
		{"negative rotation", func(c *ManagerConfig) { c.MaxAge = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultManagerConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("unknown"))
}

func TestManager_GetLoggerIsCached(t *testing.T) {
	m := NewManager(ManagerConfig{Level: "debug"})
	defer m.CloseAll()

	a := m.GetLogger("cache")
	b := m.GetLogger("cache")
	c := m.GetLogger("vehicle")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "vehicle", c.Module())
}

func TestManager_WritesRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(ManagerConfig{
		BaseLogDir: dir,
		Level:      "info",
		EnableFile: true,
	})

	log := m.GetLogger("vehicle")
	log.InfoCtx(context.Background(), "vehicle created", zap.Int64("id", 1))
	log.ErrorCtx(context.Background(), "store failed")
	m.CloseAll()

	info, err := os.ReadFile(filepath.Join(dir, "vehicle", "vehicle-info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "vehicle created")
	assert.NotContains(t, string(info), "store failed")

	errLog, err := os.ReadFile(filepath.Join(dir, "vehicle", "vehicle-error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "store failed")
}

func TestInitManager_ReplacesGlobal(t *testing.T) {
	m := InitManager(ManagerConfig{Level: "warn"})
	defer InitManager(ManagerConfig{Level: "info"})

	assert.Same(t, m.GetLogger("global"), GetLogger("global"))
	assert.NoError(t, m.Shutdown())
}

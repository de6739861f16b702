package logger

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ManagerConfig is the base configuration shared by every module logger.
type ManagerConfig struct {
	BaseLogDir       string `mapstructure:"base_log_dir"`
	Level            string `mapstructure:"level"`
	AppName          string `mapstructure:"app_name"`
	Encoding         string `mapstructure:"encoding"` // json or console
	EnableConsole    bool   `mapstructure:"enable_console"`
	EnableFile       bool   `mapstructure:"enable_file"`
	MaxSize          int    `mapstructure:"max_size"` // MB
	MaxBackups       int    `mapstructure:"max_backups"`
	MaxAge           int    `mapstructure:"max_age"` // days
	Compress         bool   `mapstructure:"compress"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	EnableTraceID    bool   `mapstructure:"enable_trace_id"`
	TraceIDFieldName string `mapstructure:"trace_id_field_name"`
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		BaseLogDir:       "logs",
		Level:            "info",
		Encoding:         "json",
		EnableConsole:    true,
		EnableFile:       true,
		MaxSize:          100,
		MaxBackups:       3,
		MaxAge:           28,
		Compress:         true,
		EnableCaller:     true,
		EnableStacktrace: true,
		EnableTraceID:    true,
		TraceIDFieldName: "trace_id",
	}
}

// ApplyDefaults fills empty string and numeric fields. Booleans are left as configured.
func (c *ManagerConfig) ApplyDefaults() {
	defaults := DefaultManagerConfig()

	if c.BaseLogDir == "" {
		c.BaseLogDir = defaults.BaseLogDir
	}
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = defaults.TraceIDFieldName
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaults.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = defaults.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}
}

func (c ManagerConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("[Logger] level must be one of debug/info/warn/error/fatal, got %q", c.Level)
	}
	if c.Encoding != "json" && c.Encoding != "console" {
		return fmt.Errorf("[Logger] encoding must be json or console, got %q", c.Encoding)
	}
	if c.EnableFile && c.BaseLogDir == "" {
		return fmt.Errorf("[Logger] base_log_dir is required when file output is enabled")
	}
	if c.MaxSize < 0 || c.MaxBackups < 0 || c.MaxAge < 0 {
		return fmt.Errorf("[Logger] rotation settings cannot be negative")
	}
	return nil
}

// ParseLevel maps a level name to a zap level, falling back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// logFilePath returns <base>/<module>/<module>-<kind>.log
func (c ManagerConfig) logFilePath(module, kind string) string {
	return filepath.Join(c.BaseLogDir, module, fmt.Sprintf("%s-%s.log", module, kind))
}

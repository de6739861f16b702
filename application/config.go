package application

import (
	"fmt"
	"time"

	"github.com/KOMKZ/yogan-vehicle-api/cache"
	"github.com/KOMKZ/yogan-vehicle-api/config"
	"github.com/KOMKZ/yogan-vehicle-api/database"
	"github.com/KOMKZ/yogan-vehicle-api/health"
	"github.com/KOMKZ/yogan-vehicle-api/httpx"
	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/KOMKZ/yogan-vehicle-api/middleware"
	"github.com/KOMKZ/yogan-vehicle-api/redis"
	"github.com/gin-gonic/gin"
)

// AppConfig is the whole configuration tree of the service.
type AppConfig struct {
	ApiServer  ApiServerConfig          `mapstructure:"api_server"`
	Logger     logger.ManagerConfig     `mapstructure:"logger"`
	Middleware MiddlewareConfig         `mapstructure:"middleware"`
	Httpx      httpx.ErrorLoggingConfig `mapstructure:"httpx"`
	Database   DatabaseConfig           `mapstructure:"database"`
	Redis      RedisConfig              `mapstructure:"redis"`
	Cache      cache.Config             `mapstructure:"cache"`
	Health     health.Config            `mapstructure:"health"`
	Metrics    MetricsConfig            `mapstructure:"metrics"`
}

type ApiServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MiddlewareConfig struct {
	TraceID    TraceIDConfig    `mapstructure:"trace_id"`
	RequestLog RequestLogConfig `mapstructure:"request_log"`
}

type TraceIDConfig struct {
	Enable               bool   `mapstructure:"enable"`
	Header               string `mapstructure:"header"`
	EnableResponseHeader bool   `mapstructure:"enable_response_header"`
}

type RequestLogConfig struct {
	Enable    bool     `mapstructure:"enable"`
	SkipPaths []string `mapstructure:"skip_paths"`
}

// DatabaseConfig lists named connections. Default names the one holding the
// vehicle table.
type DatabaseConfig struct {
	Default     string                     `mapstructure:"default"`
	Connections map[string]database.Config `mapstructure:"connections"`
}

type RedisConfig struct {
	Instances map[string]redis.Config `mapstructure:"instances"`
}

// MetricsConfig controls /metrics and the HTTP request collectors.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ApiServer: ApiServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            gin.ReleaseMode,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logger: logger.DefaultManagerConfig(),
		Middleware: MiddlewareConfig{
			TraceID: TraceIDConfig{
				Enable:               true,
				Header:               middleware.TraceIDHeader,
				EnableResponseHeader: true,
			},
			RequestLog: RequestLogConfig{
				Enable:    true,
				SkipPaths: middleware.DefaultRequestLogConfig().SkipPaths,
			},
		},
		Httpx:    httpx.DefaultErrorLoggingConfig(),
		Database: DatabaseConfig{Default: "master"},
		Cache:    cache.DefaultConfig(),
		Health:   health.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "vehicle_api",
			Path:      "/metrics",
		},
	}
}

// ApplyDefaults fills empty strings and durations. Booleans are left as configured.
func (c *AppConfig) ApplyDefaults() {
	d := DefaultAppConfig()
	if c.ApiServer.Host == "" {
		c.ApiServer.Host = d.ApiServer.Host
	}
	if c.ApiServer.Mode == "" {
		c.ApiServer.Mode = d.ApiServer.Mode
	}
	if c.ApiServer.ReadTimeout <= 0 {
		c.ApiServer.ReadTimeout = d.ApiServer.ReadTimeout
	}
	if c.ApiServer.WriteTimeout <= 0 {
		c.ApiServer.WriteTimeout = d.ApiServer.WriteTimeout
	}
	if c.ApiServer.ShutdownTimeout <= 0 {
		c.ApiServer.ShutdownTimeout = d.ApiServer.ShutdownTimeout
	}
	if c.Middleware.TraceID.Header == "" {
		c.Middleware.TraceID.Header = d.Middleware.TraceID.Header
	}
	if c.Database.Default == "" {
		c.Database.Default = d.Database.Default
	}
	if c.Health.Timeout <= 0 {
		c.Health.Timeout = d.Health.Timeout
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	c.Logger.ApplyDefaults()
	c.Cache.ApplyDefaults()
}

func (c ApiServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("api_server.port out of range: %d", c.Port)
	}
	switch c.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("api_server.mode must be debug, release or test, got %q", c.Mode)
	}
	return nil
}

func (c DatabaseConfig) Validate() error {
	if _, ok := c.Connections[c.Default]; !ok {
		return fmt.Errorf("database.connections has no %q entry", c.Default)
	}
	for name, conn := range c.Connections {
		conn.ApplyDefaults()
		if err := conn.Validate(); err != nil {
			return fmt.Errorf("database.connections.%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks every section. A redis cache must point at a configured instance.
func (c AppConfig) Validate() error {
	if err := config.ValidateAll(c.ApiServer, c.Logger, c.Database, c.Cache); err != nil {
		return err
	}
	if c.Cache.Enabled && c.Cache.Store == cache.StoreRedis {
		if _, ok := c.Redis.Instances[c.Cache.Instance]; !ok {
			return fmt.Errorf("cache.instance %q is not listed under redis.instances", c.Cache.Instance)
		}
	}
	return nil
}

// LoadConfig reads <path>/config.yaml, <path>/<APP_ENV>.yaml and PREFIX_*
// variables over the defaults.
func LoadConfig(path, envPrefix string) (*AppConfig, error) {
	loader, err := config.NewLoaderBuilder().
		WithConfigPath(path).
		WithEnvPrefix(envPrefix).
		Build()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := DefaultAppConfig()
	if err := loader.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

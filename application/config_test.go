package application

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KOMKZ/yogan-vehicle-api/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
api_server:
  port: 9090
  mode: test
database:
  default: master
  connections:
    master:
      driver: sqlite
      dsn: vehicles.db
redis:
  instances:
    main:
      mode: standalone
      addrs: ["127.0.0.1:6379"]
cache:
  store: redis
  ttl: 30m
  serializer: msgpack
middleware:
  request_log:
    enable: false
`

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadConfig_FileOverDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", baseYAML)

	cfg, err := LoadConfig(dir, "APP")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ApiServer.Port)
	assert.Equal(t, "test", cfg.ApiServer.Mode)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, cache.SerializerMsgpack, cfg.Cache.Serializer)
	assert.False(t, cfg.Middleware.RequestLog.Enable)

	// untouched sections keep their defaults
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Cache.SlidingExpiration)
	assert.Equal(t, cache.DefaultCollectionKey, cfg.Cache.CollectionKey)
	assert.True(t, cfg.Middleware.TraceID.Enable)
	assert.Equal(t, "vehicle_api", cfg.Metrics.Namespace)
}

func TestLoadConfig_EnvFileAndVariables(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("APP_CACHE_TTL", "5m")
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", baseYAML)
	writeConfig(t, dir, "staging.yaml", "cache:\n  serializer: cbor\n  ttl: 1h\n")

	cfg, err := LoadConfig(dir, "APP")
	require.NoError(t, err)

	assert.Equal(t, cache.SerializerCBOR, cfg.Cache.Serializer)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", strings.Replace(baseYAML, "store: redis", "store: redis\n  instance: sessions", 1))

	_, err := LoadConfig(dir, "APP")
	require.Error(t, err)
}

func TestAppConfig_Validate(t *testing.T) {
	cfg, _ := testConfig(t)
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.ApiServer.Mode = "verbose"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Database.Default = "replica"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Cache.Store = "memcached"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Cache.Enabled = false
	bad.Redis.Instances = nil
	assert.NoError(t, bad.Validate())
}

func TestAppConfig_ApplyDefaults(t *testing.T) {
	var cfg AppConfig
	cfg.ApplyDefaults()

	assert.Equal(t, "0.0.0.0", cfg.ApiServer.Host)
	assert.Equal(t, "release", cfg.ApiServer.Mode)
	assert.Equal(t, "master", cfg.Database.Default)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, cache.DefaultTTL, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
}

package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/KOMKZ/yogan-vehicle-api/cache"
	"github.com/KOMKZ/yogan-vehicle-api/database"
	"github.com/KOMKZ/yogan-vehicle-api/health"
	"github.com/KOMKZ/yogan-vehicle-api/redis"
	"github.com/KOMKZ/yogan-vehicle-api/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) (*AppConfig, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultAppConfig()
	cfg.ApiServer.Host = "127.0.0.1"
	cfg.ApiServer.Port = 0
	cfg.ApiServer.Mode = gin.TestMode
	cfg.Logger.EnableConsole = false
	cfg.Logger.EnableFile = false
	cfg.Database.Connections = map[string]database.Config{
		"master": {
			Driver:       database.DriverSQLite,
			DSN:          filepath.Join(t.TempDir(), "app.db"),
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
	}
	cfg.Redis.Instances = map[string]redis.Config{
		"main": {Mode: redis.ModeStandalone, Addrs: []string{mr.Addr()}},
	}
	cfg.Cache.KeyPrefix = "vehicle-api:"
	return &cfg, mr
}

func newTestApp(t *testing.T, cfg *AppConfig) (*App, *HTTPServer) {
	t.Helper()
	app, err := NewWithConfig(cfg, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(5 * time.Second) })

	require.NoError(t, app.Migrate(context.Background()))
	server, err := app.Setup()
	require.NoError(t, err)
	return app, server
}

func TestApp_ServesVehiclesThroughCache(t *testing.T) {
	cfg, mr := testConfig(t)
	_, server := newTestApp(t, cfg)
	h := server.Engine()
	key := "vehicle-api:" + cache.DefaultCollectionKey

	resp := testutil.POST("/api/vehicle").
		WithJSON(map[string]interface{}{"brand": "Toyota", "model": "Corolla", "plate": "ABC-123", "year": 2020}).
		Do(h)
	require.Equal(t, http.StatusCreated, resp.Status(), resp.Body())

	resp = testutil.GET("/api/vehicle").Do(h)
	require.Equal(t, http.StatusOK, resp.Status())
	assert.Contains(t, resp.Body(), "ABC-123")
	assert.True(t, mr.Exists(key))

	resp = testutil.DELETE("/api/vehicle/1").Do(h)
	require.Equal(t, http.StatusNoContent, resp.Status())
	assert.False(t, mr.Exists(key))

	resp = testutil.GET("/api/vehicle").Do(h)
	require.Equal(t, http.StatusOK, resp.Status())
	assert.False(t, mr.Exists(key), "empty collection is not cached")
}

func TestApp_ValidationErrorsUseEnvelope(t *testing.T) {
	cfg, _ := testConfig(t)
	_, server := newTestApp(t, cfg)

	resp := testutil.POST("/api/vehicle").Do(server.Engine())
	assert.Equal(t, http.StatusBadRequest, resp.Status())

	resp = testutil.PUT("/api/vehicle/abc").WithRawJSON(`{"brand":"a","model":"b","plate":"c"}`).Do(server.Engine())
	assert.Equal(t, http.StatusBadRequest, resp.Status())

	resp = testutil.GET("/nowhere").Do(server.Engine())
	assert.Equal(t, http.StatusNotFound, resp.Status())
}

func TestApp_HealthDegradesWhenRedisIsDown(t *testing.T) {
	cfg, mr := testConfig(t)
	_, server := newTestApp(t, cfg)

	var report health.Response
	resp := testutil.GET("/health").Do(server.Engine())
	require.Equal(t, http.StatusOK, resp.Status())
	require.NoError(t, resp.JSON(&report))
	assert.Equal(t, health.StatusHealthy, report.Status)
	assert.Contains(t, report.Checks, "database")
	assert.Contains(t, report.Checks, "redis")
	assert.Contains(t, report.Checks, "cache")

	mr.Close()

	resp = testutil.GET("/health").Do(server.Engine())
	require.Equal(t, http.StatusOK, resp.Status())
	require.NoError(t, resp.JSON(&report))
	assert.Equal(t, health.StatusDegraded, report.Status)

	// reads fall back to the database
	resp = testutil.GET("/api/vehicle").Do(server.Engine())
	assert.Equal(t, http.StatusOK, resp.Status())
}

func TestApp_MetricsExposeCacheStats(t *testing.T) {
	cfg, _ := testConfig(t)
	_, server := newTestApp(t, cfg)

	testutil.GET("/api/vehicle").Do(server.Engine())

	resp := testutil.GET("/metrics").Do(server.Engine())
	require.Equal(t, http.StatusOK, resp.Status())
	assert.Contains(t, resp.Body(), `vehicle_api_cache_misses_total{store="redis"} 1`)
	assert.Contains(t, resp.Body(), "vehicle_api_http_requests_total")
}

func TestApp_MetricsDisabled(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Metrics.Enabled = false
	_, server := newTestApp(t, cfg)

	resp := testutil.GET("/metrics").Do(server.Engine())
	assert.Equal(t, http.StatusNotFound, resp.Status())
}

func TestApp_MemoryStoreNeedsNoRedis(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Redis.Instances = nil
	cfg.Cache.Store = cache.StoreMemory
	app, server := newTestApp(t, cfg)

	resp := testutil.POST("/api/vehicle").
		WithJSON(map[string]interface{}{"brand": "Kia", "model": "Rio", "plate": "K-1"}).
		Do(server.Engine())
	require.Equal(t, http.StatusCreated, resp.Status(), resp.Body())

	testutil.GET("/api/vehicle").Do(server.Engine())
	require.NoError(t, app.PurgeCache(context.Background()))
}

func TestApp_RunNonBlockingAndShutdown(t *testing.T) {
	cfg, _ := testConfig(t)
	app, err := NewWithConfig(cfg, "test")
	require.NoError(t, err)
	require.NoError(t, app.Migrate(context.Background()))

	server, err := app.RunNonBlocking()
	require.NoError(t, err)
	assert.Equal(t, StateRunning, app.State())

	res, err := http.Get("http://" + server.Addr() + "/health/liveness")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var live map[string]string
	require.NoError(t, json.Unmarshal(body, &live))
	assert.Equal(t, "alive", live["status"])

	require.NoError(t, app.Shutdown(5*time.Second))
	assert.Equal(t, StateStopped, app.State())

	_, err = http.Get("http://" + server.Addr() + "/health/liveness")
	assert.Error(t, err)
}

func TestApp_RunReturnsOnCancel(t *testing.T) {
	cfg, _ := testConfig(t)
	app, err := NewWithConfig(cfg, "test")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run() }()

	require.Eventually(t, func() bool { return app.State() == StateRunning }, 2*time.Second, 10*time.Millisecond)
	app.Cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Cancel")
	}
	assert.Equal(t, StateStopped, app.State())
}

func TestNewWithConfig_RejectsMissingRedisInstance(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Cache.Instance = "sessions"

	_, err := NewWithConfig(cfg, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessions")
}

func TestAppState_String(t *testing.T) {
	assert.Equal(t, "Init", StateInit.String())
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Unknown", AppState(42).String())
}

type closer struct{ err error }

func (c *closer) Shutdown() error { return c.err }

func TestContainerShutdownErr(t *testing.T) {
	clean := do.New()
	do.Provide(clean, func(do.Injector) (*closer, error) { return &closer{}, nil })
	_ = do.MustInvoke[*closer](clean)
	assert.NoError(t, containerShutdownErr(clean.Shutdown()))

	failing := do.New()
	do.Provide(failing, func(do.Injector) (*closer, error) { return &closer{err: errors.New("close refused")}, nil })
	_ = do.MustInvoke[*closer](failing)
	err := containerShutdownErr(failing.Shutdown())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close refused")

	assert.NoError(t, containerShutdownErr(nil))
}

func TestApp_ShutdownAfterSetupSucceeds(t *testing.T) {
	cfg, _ := testConfig(t)
	app, err := NewWithConfig(cfg, "test")
	require.NoError(t, err)
	require.NoError(t, app.Migrate(context.Background()))
	_, err = app.Setup()
	require.NoError(t, err)

	require.NoError(t, app.Shutdown(5*time.Second))
	assert.Equal(t, StateStopped, app.State())
}

package testutil

import (
	"context"
	"testing"

	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/KOMKZ/yogan-vehicle-api/redis"
	"github.com/alicebob/miniredis/v2"
)

// SetupRedis starts miniredis and a redis.Manager with one instance called "main".
func SetupRedis(t *testing.T) (*redis.Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	m, err := redis.NewManager(context.Background(), map[string]redis.Config{
		"main": {Mode: redis.ModeStandalone, Addrs: []string{mr.Addr()}},
	}, logger.NewTestCtxLogger())
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m, mr
}

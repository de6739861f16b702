package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.SlidingExpiration)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "main", cfg.Instance)
	assert.Equal(t, DefaultCollectionKey, cfg.CollectionKey)
	assert.Equal(t, 20*time.Minute, cfg.TTL)
	assert.Equal(t, SerializerJSON, cfg.Serializer)
	assert.Equal(t, int64(64), cfg.Ristretto.BufferItems)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "memcached" }},
		{"unknown serializer", func(c *Config) { c.Serializer = "gob" }},
		{"empty key", func(c *Config) { c.CollectionKey = "" }},
		{"negative ttl", func(c *Config) { c.TTL = -time.Second }},
		{"redis without instance", func(c *Config) { c.Instance = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfigInvalid)
		})
	}
}

func TestNewStore(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Enabled = false
		s, err := NewStore(cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "nop", s.Name())
	})

	t.Run("memory", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store = StoreMemory
		s, err := NewStore(cfg, nil)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("ristretto", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store = StoreRistretto
		cfg.ApplyDefaults()
		s, err := NewStore(cfg, nil)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &RistrettoStore{}, s)
	})

	t.Run("bigcache", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store = StoreBigCache
		cfg.ApplyDefaults()
		s, err := NewStore(cfg, nil)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &BigCacheStore{}, s)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		cfg := DefaultConfig()
		cfg.KeyPrefix = "app:"
		s, err := NewStore(cfg, func(name string) (redis.UniversalClient, error) {
			assert.Equal(t, "main", name)
			return client, nil
		})
		require.NoError(t, err)
		require.NoError(t, s.Set(context.Background(), "k", []byte("v"), time.Minute))
		assert.True(t, mr.Exists("app:k"))
	})

	t.Run("redis without resolver", func(t *testing.T) {
		_, err := NewStore(DefaultConfig(), nil)
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})

	t.Run("unknown redis instance", func(t *testing.T) {
		_, err := NewStore(DefaultConfig(), func(string) (redis.UniversalClient, error) {
			return nil, errors.New("redis instance not found")
		})
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})
}

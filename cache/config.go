package cache

import (
	"time"
)

const (
	StoreRedis     = "redis"
	StoreMemory    = "memory"
	StoreRistretto = "ristretto"
	StoreBigCache  = "bigcache"
)

const (
	DefaultCollectionKey = "vehicles-cache"
	DefaultTTL           = 20 * time.Minute
)

// Config is the cache section of the configuration.
type Config struct {
	// Enabled false routes every read to the repository.
	Enabled bool `mapstructure:"enabled"`

	// Store selects the backend: redis, memory, ristretto or bigcache.
	Store string `mapstructure:"store"`

	// Instance names the redis.instances entry used by the redis backend.
	Instance string `mapstructure:"instance"`

	KeyPrefix     string        `mapstructure:"key_prefix"`
	CollectionKey string        `mapstructure:"collection_key"`
	TTL           time.Duration `mapstructure:"ttl"`

	// SlidingExpiration resets the TTL before every read.
	SlidingExpiration bool `mapstructure:"sliding_expiration"`

	Serializer string `mapstructure:"serializer"`

	// SingleFlight shares one repository load between concurrent misses in this
	// process. Off by default: concurrent misses each load.
	SingleFlight bool `mapstructure:"single_flight"`

	Memory    MemoryConfig    `mapstructure:"memory"`
	Ristretto RistrettoConfig `mapstructure:"ristretto"`
	BigCache  BigCacheConfig  `mapstructure:"bigcache"`
}

type MemoryConfig struct {
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		Store:             StoreRedis,
		Instance:          "main",
		CollectionKey:     DefaultCollectionKey,
		TTL:               DefaultTTL,
		SlidingExpiration: true,
		Serializer:        SerializerJSON,
		Memory: MemoryConfig{
			MaxSize:         10000,
			CleanupInterval: time.Minute,
		},
	}
}

// ApplyDefaults fills empty strings and durations. Booleans are left as configured.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Store == "" {
		c.Store = d.Store
	}
	if c.Instance == "" {
		c.Instance = d.Instance
	}
	if c.CollectionKey == "" {
		c.CollectionKey = d.CollectionKey
	}
	if c.TTL == 0 {
		c.TTL = d.TTL
	}
	if c.Serializer == "" {
		c.Serializer = d.Serializer
	}
	if c.Memory.MaxSize <= 0 {
		c.Memory.MaxSize = d.Memory.MaxSize
	}
	if c.Memory.CleanupInterval <= 0 {
		c.Memory.CleanupInterval = d.Memory.CleanupInterval
	}
	c.Ristretto.ApplyDefaults()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreRedis, StoreMemory, StoreRistretto, StoreBigCache:
	default:
		return ErrConfigInvalid.WithMsgf("unknown cache store %q", c.Store)
	}
	switch c.Serializer {
	case SerializerJSON, SerializerMsgpack, SerializerCBOR:
	default:
		return ErrConfigInvalid.WithMsgf("unknown serializer %q", c.Serializer)
	}
	if c.CollectionKey == "" {
		return ErrConfigInvalid.WithMsg("collection_key cannot be empty")
	}
	if c.TTL < 0 {
		return ErrConfigInvalid.WithMsgf("ttl cannot be negative, got %s", c.TTL)
	}
	if c.Store == StoreBigCache && c.TTL == 0 {
		return ErrConfigInvalid.WithMsg("bigcache store requires a ttl")
	}
	if c.Store == StoreRedis && c.Instance == "" {
		return ErrConfigInvalid.WithMsg("redis store requires an instance name")
	}
	return nil
}

package cache

import (
	"github.com/redis/go-redis/v9"
)

// RedisResolver looks up a shared redis client by instance name.
type RedisResolver func(name string) (redis.UniversalClient, error)

// NewStore builds the backend selected by cfg. A disabled cache yields a NopStore.
// resolve may be nil unless cfg.Store is redis.
func NewStore(cfg Config, resolve RedisResolver) (Store, error) {
	if !cfg.Enabled {
		return NopStore{}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Store {
	case StoreRedis:
		if resolve == nil {
			return nil, ErrConfigInvalid.WithMsg("redis store requires configured redis instances")
		}
		client, err := resolve(cfg.Instance)
		if err != nil {
			return nil, ErrConfigInvalid.Wrap(err)
		}
		return NewRedisStore(cfg.Store, client, cfg.KeyPrefix), nil
	case StoreRistretto:
		s, err := NewRistrettoStore(cfg.Store, cfg.Ristretto)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StoreBigCache:
		s, err := NewBigCacheStore(cfg.Store, cfg.BigCache, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return NewMemoryStore(cfg.Store, cfg.Memory.MaxSize, cfg.Memory.CleanupInterval), nil
	}
}

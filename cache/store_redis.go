package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis. The client belongs to redis.Manager and is
// not closed here.
type RedisStore struct {
	name      string
	client    redis.UniversalClient
	keyPrefix string
}

func NewRedisStore(name string, client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{
		name:      name,
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) Name() string {
	return s.name
}

func (s *RedisStore) buildKey(key string) string {
	return s.keyPrefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", err)
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.buildKey(key), value, ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.buildKey(key)).Result()
	if err != nil {
		return false, unavailable("exists", err)
	}
	return n > 0, nil
}

// RefreshTTL uses EXPIRE, which is a no-op on an absent key. ttl <= 0 removes
// the expiry instead.
func (s *RedisStore) RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		// PERSIST answers false for a key without expiry, so existence is checked first
		exists, err := s.Exists(ctx, key)
		if err != nil || !exists {
			return false, err
		}
		if err := s.client.Persist(ctx, s.buildKey(key)).Err(); err != nil {
			return false, unavailable("refresh ttl", err)
		}
		return true, nil
	}

	ok, err := s.client.Expire(ctx, s.buildKey(key), ttl).Result()
	if err != nil {
		return false, unavailable("refresh ttl", err)
	}
	return ok, nil
}

func (s *RedisStore) Close() error {
	return nil
}

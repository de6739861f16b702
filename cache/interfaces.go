// Package cache implements cache-aside coordination between a durable repository
// and a TTL-bound cache holding one snapshot of the whole collection.
package cache

import (
	"context"
	"time"
)

// Store is a narrow port to a cache backend. Every method may fail with an error
// wrapping ErrCacheUnavailable; implementations never swallow backend failures.
type Store interface {
	Name() string

	// Get returns the payload and true, or nil and false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set overwrites key. ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// RefreshTTL resets the expiry of an existing key and reports whether it existed.
	// An absent key yields false and no error.
	RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error)

	Close() error
}

// Serializer turns a collection snapshot into a payload and back.
type Serializer interface {
	Name() string
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
}

// Record is an item the coordinator can validate before writing it.
type Record interface {
	Validate() error
}

// Repository is the durable, authoritative store of the collection.
type Repository[T Record] interface {
	ListAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (int64, error)
	Update(ctx context.Context, id int64, item T) error
	Delete(ctx context.Context, id int64) error
}

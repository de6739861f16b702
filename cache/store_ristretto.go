package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
)

var errSetRejected = errors.New("entry rejected by admission policy")

// RistrettoConfig sizes the ristretto cache. Cost is the payload size in bytes.
type RistrettoConfig struct {
	NumCounters int64 `mapstructure:"num_counters"`
	MaxCost     int64 `mapstructure:"max_cost"`
	BufferItems int64 `mapstructure:"buffer_items"`
}

func (c *RistrettoConfig) ApplyDefaults() {
	if c.NumCounters <= 0 {
		c.NumCounters = 10000
	}
	if c.MaxCost <= 0 {
		c.MaxCost = 64 << 20
	}
	if c.BufferItems <= 0 {
		c.BufferItems = 64
	}
}

// RistrettoStore is an in-process Store backed by dgraph-io/ristretto. Writes
// are serialized so RefreshTTL cannot restore an entry deleted under it.
type RistrettoStore struct {
	name   string
	c      *ristretto.Cache
	closed atomic.Bool

	mu          sync.Mutex
	refreshRead func() // runs between the read and the rewrite in RefreshTTL
}

func NewRistrettoStore(name string, cfg RistrettoConfig) (*RistrettoStore, error) {
	cfg.ApplyDefaults()
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, ErrConfigInvalid.Wrap(err)
	}
	return &RistrettoStore{name: name, c: c}, nil
}

func (s *RistrettoStore) Name() string {
	return s.name
}

func (s *RistrettoStore) check(ctx context.Context, op string) error {
	if s.closed.Load() {
		return unavailable(op, errStoreClosed)
	}
	if err := ctx.Err(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (s *RistrettoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(ctx, "get"); err != nil {
		return nil, false, err
	}
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for the write buffer so the entry is visible to the next Get.
func (s *RistrettoStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.check(ctx, "set"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(key, value, ttl)
}

func (s *RistrettoStore) set(key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if !s.c.SetWithTTL(key, append([]byte(nil), value...), int64(len(value))+1, ttl) {
		return unavailable("set", errSetRejected)
	}
	s.c.Wait()
	return nil
}

func (s *RistrettoStore) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx, "delete"); err != nil {
		return err
	}
	s.mu.Lock()
	s.c.Del(key)
	s.mu.Unlock()
	return nil
}

func (s *RistrettoStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

// RefreshTTL rewrites the entry with the new ttl.
func (s *RistrettoStore) RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if s.refreshRead != nil {
		s.refreshRead()
	}
	if err := s.check(ctx, "set"); err != nil {
		return false, err
	}
	if err := s.set(key, b, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RistrettoStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.c.Close()
	return nil
}

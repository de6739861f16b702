package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache/v3"
)

type BigCacheConfig struct {
	Shards             int           `mapstructure:"shards"`
	CleanWindow        time.Duration `mapstructure:"clean_window"`
	MaxEntrySize       int           `mapstructure:"max_entry_size"`
	HardMaxCacheSizeMB int           `mapstructure:"hard_max_cache_size_mb"`
}

// BigCacheStore is an in-process Store backed by allegro/bigcache. bigcache has
// one life window for every entry, so the ttl passed to Set and RefreshTTL only
// restarts that window. Writes are serialized so RefreshTTL cannot restore an
// entry deleted under it.
type BigCacheStore struct {
	name   string
	c      *bigcache.BigCache
	closed atomic.Bool

	mu          sync.Mutex
	refreshRead func() // runs between the read and the rewrite in RefreshTTL
}

// NewBigCacheStore sizes the cache from cfg and expires entries after lifeWindow.
func NewBigCacheStore(name string, cfg BigCacheConfig, lifeWindow time.Duration) (*BigCacheStore, error) {
	if lifeWindow <= 0 {
		return nil, ErrConfigInvalid.WithMsg("bigcache store requires a positive ttl")
	}
	conf := bigcache.DefaultConfig(lifeWindow)
	conf.Verbose = false
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}

	c, err := bigcache.New(context.Background(), conf)
	if err != nil {
		return nil, ErrConfigInvalid.Wrap(err)
	}
	return &BigCacheStore{name: name, c: c}, nil
}

func (s *BigCacheStore) Name() string {
	return s.name
}

func (s *BigCacheStore) check(ctx context.Context, op string) error {
	if s.closed.Load() {
		return unavailable(op, errStoreClosed)
	}
	if err := ctx.Err(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

// Get treats an entry past its life window as absent even before the janitor
// has removed it. The stale entry is left to the janitor.
func (s *BigCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(ctx, "get"); err != nil {
		return nil, false, err
	}
	b, resp, err := s.c.GetWithInfo(key)
	switch {
	case errors.Is(err, bigcache.ErrEntryNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, unavailable("get", err)
	case resp.EntryStatus == bigcache.Expired:
		return nil, false, nil
	}
	return b, true, nil
}

func (s *BigCacheStore) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if err := s.check(ctx, "set"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.c.Set(key, value); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (s *BigCacheStore) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx, "delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.c.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return unavailable("delete", err)
	}
	return nil
}

func (s *BigCacheStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

// RefreshTTL rewrites the entry, which restarts its life window.
func (s *BigCacheStore) RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
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
	if err := s.c.Set(key, b); err != nil {
		return false, unavailable("set", err)
	}
	return true, nil
}

func (s *BigCacheStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.c.Close()
}

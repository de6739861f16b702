package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errStoreClosed = errors.New("store closed")

// MemoryStore is an in-process Store. Expired entries read as absent and are
// removed by a janitor goroutine until Close.
type MemoryStore struct {
	name    string
	data    map[string]*memoryItem
	mu      sync.RWMutex
	maxSize int
	now     func() time.Time
	closed  bool
	stop    chan struct{}
	done    chan struct{}
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func (it *memoryItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(name string, maxSize int, cleanupInterval time.Duration, opts ...MemoryOption) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 10000
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	s := &MemoryStore{
		name:    name,
		data:    make(map[string]*memoryItem),
		maxSize: maxSize,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *MemoryStore) Name() string {
	return s.name
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, unavailable("get", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, unavailable("get", errStoreClosed)
	}
	it, ok := s.data[key]
	if !ok || it.expired(s.now()) {
		return nil, false, nil
	}
	return it.value, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return unavailable("set", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return unavailable("set", errStoreClosed)
	}
	if _, exists := s.data[key]; !exists && len(s.data) >= s.maxSize {
		s.evictOne()
	}

	it := &memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = it
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return unavailable("delete", errStoreClosed)
	}
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

func (s *MemoryStore) RefreshTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable("refresh ttl", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, unavailable("refresh ttl", errStoreClosed)
	}
	now := s.now()
	it, ok := s.data[key]
	if !ok || it.expired(now) {
		return false, nil
	}
	if ttl > 0 {
		it.expiresAt = now.Add(ttl)
	} else {
		it.expiresAt = time.Time{}
	}
	return true, nil
}

// Close stops the janitor. Later calls fail with ErrCacheUnavailable.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.data = make(map[string]*memoryItem)
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// evictOne drops the entry closest to expiry, preferring entries that have one.
func (s *MemoryStore) evictOne() {
	var victim string
	var victimExp time.Time
	for key, it := range s.data {
		switch {
		case victim == "":
			victim, victimExp = key, it.expiresAt
		case it.expiresAt.IsZero():
		case victimExp.IsZero() || it.expiresAt.Before(victimExp):
			victim, victimExp = key, it.expiresAt
		}
	}
	if victim != "" {
		delete(s.data, victim)
	}
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, it := range s.data {
		if it.expired(now) {
			delete(s.data, key)
		}
	}
}

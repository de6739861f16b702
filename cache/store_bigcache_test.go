package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBigCache(t *testing.T, life time.Duration) *BigCacheStore {
	t.Helper()
	s, err := NewBigCacheStore("bigcache", BigCacheConfig{Shards: 16, CleanWindow: time.Second}, life)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBigCacheStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := newBigCache(t, time.Minute)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	ok, err = s.RefreshTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err = s.RefreshTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBigCacheStore_LifeWindowExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the one second life window")
	}
	ctx := context.Background()
	s := newBigCache(t, time.Second)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Second))
	assert.Eventually(t, func() bool {
		_, ok, err := s.Get(ctx, "k")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestBigCacheStore_DeleteDuringRefresh(t *testing.T) {
	s := newBigCache(t, time.Minute)
	assertDeleteWinsOverRefresh(t, s, &s.refreshRead)
}

func TestBigCacheStore_RequiresLifeWindow(t *testing.T) {
	_, err := NewBigCacheStore("bigcache", BigCacheConfig{}, 0)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestBigCacheStore_Closed(t *testing.T) {
	s, err := NewBigCacheStore("bigcache", BigCacheConfig{}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheUnavailable)
	assert.ErrorIs(t, s.Set(context.Background(), "k", nil, 0), ErrCacheUnavailable)
}

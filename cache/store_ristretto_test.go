package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRistrettoStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewRistrettoStore("ristretto", RistrettoConfig{})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	ok, err = s.RefreshTTL(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err = s.RefreshTTL(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRistrettoStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := NewRistrettoStore("ristretto", RistrettoConfig{})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 50*time.Millisecond))
	assert.Eventually(t, func() bool {
		_, ok, err := s.Get(ctx, "k")
		return err == nil && !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRistrettoStore_Closed(t *testing.T) {
	s, err := NewRistrettoStore("ristretto", RistrettoConfig{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheUnavailable)
}

// assertDeleteWinsOverRefresh parks RefreshTTL after its read, issues a Delete
// and checks the key stays gone once both return.
func assertDeleteWinsOverRefresh(t *testing.T, s Store, hook *func()) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("old"), time.Minute))

	reached := make(chan struct{})
	release := make(chan struct{})
	*hook = func() {
		close(reached)
		<-release
	}

	refreshed := make(chan error, 1)
	go func() {
		_, err := s.RefreshTTL(ctx, "k", time.Minute)
		refreshed <- err
	}()
	<-reached

	deleted := make(chan error, 1)
	go func() { deleted <- s.Delete(ctx, "k") }()

	select {
	case <-deleted:
		t.Fatal("delete finished while refresh was between read and write")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-refreshed)
	require.NoError(t, <-deleted)

	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRistrettoStore_DeleteDuringRefresh(t *testing.T) {
	s, err := NewRistrettoStore("ristretto", RistrettoConfig{})
	require.NoError(t, err)
	defer s.Close()

	assertDeleteWinsOverRefresh(t, s, &s.refreshRead)
}

package cache

import (
	"context"
	"time"
)

// NopStore never holds anything. It stands in when caching is disabled.
type NopStore struct{}

func (NopStore) Name() string { return "nop" }

func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NopStore) Delete(context.Context, string) error { return nil }

func (NopStore) Exists(context.Context, string) (bool, error) { return false, nil }

func (NopStore) RefreshTTL(context.Context, string, time.Duration) (bool, error) { return false, nil }

func (NopStore) Close() error { return nil }

package cache

import (
	"context"
	"reflect"
	"time"

	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/KOMKZ/yogan-vehicle-api/validator"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// failure classifies an error met by the coordinator. Only failureStore and
// failureCancelled reach the caller.
type failure int

const (
	failureNone failure = iota
	failureCache
	failureStore
	failureCancelled
)

func classify(ctx context.Context, err error) failure {
	switch {
	case err == nil:
		return failureNone
	case IsStoreError(err):
		return failureStore
	case ctx.Err() != nil:
		return failureCancelled
	default:
		return failureCache
	}
}

// Coordinator keeps one serialized snapshot of the whole collection under a fixed
// key. Reads go cache first and fall back to the repository; every successful
// mutation deletes the snapshot. Cache failures are logged and absorbed, repository
// failures are returned as *StoreError.
//
// Concurrent misses each load from the repository unless single flight is enabled.
// A Coordinator holds no locks; store and repository must be safe for concurrent use.
type Coordinator[T Record] struct {
	repo       Repository[T]
	store      Store
	serializer Serializer
	key        string
	ttl        time.Duration
	sliding    bool
	sf         *singleflight.Group
	log        logger.Logger
	stats      counters
}

// NewCoordinator wires repo and store. A nil store disables caching, a nil
// serializer means json and a nil log uses the "cache" module logger.
func NewCoordinator[T Record](repo Repository[T], store Store, serializer Serializer, cfg Config, log logger.Logger) *Coordinator[T] {
	cfg.ApplyDefaults()
	if store == nil {
		store = NopStore{}
	}
	if serializer == nil {
		serializer = JSONSerializer{}
	}
	if log == nil {
		log = logger.GetLogger("cache")
	}

	c := &Coordinator[T]{
		repo:       repo,
		store:      store,
		serializer: serializer,
		key:        cfg.CollectionKey,
		ttl:        cfg.TTL,
		sliding:    cfg.SlidingExpiration,
		log:        log,
	}
	if cfg.SingleFlight {
		c.sf = &singleflight.Group{}
	}
	return c
}

// Key is the cache key holding the snapshot.
func (c *Coordinator[T]) Key() string {
	return c.key
}

// TTL is the expiry applied to every snapshot write and refresh.
func (c *Coordinator[T]) TTL() time.Duration {
	return c.ttl
}

// StoreName names the backing store, as used in metrics labels.
func (c *Coordinator[T]) StoreName() string {
	return c.store.Name()
}

// GetCollection returns the cached snapshot, or loads the collection from the
// repository and caches it. An empty collection is returned but never cached.
func (c *Coordinator[T]) GetCollection(ctx context.Context) ([]T, error) {
	if c.sliding {
		_, err := c.store.RefreshTTL(ctx, c.key, c.ttl)
		if err := c.absorb(ctx, "refresh ttl", err); err != nil {
			return nil, err
		}
	}

	items, hit, err := c.readSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if hit {
		c.stats.hits.Add(1)
		c.log.DebugCtx(ctx, "cache hit", zap.String("key", c.key), zap.Int("items", len(items)))
		return items, nil
	}

	c.stats.misses.Add(1)
	c.log.DebugCtx(ctx, "cache miss", zap.String("key", c.key))
	if c.sf == nil {
		return c.load(ctx)
	}
	return c.sharedLoad(ctx)
}

// Add validates item, creates it and invalidates the snapshot.
func (c *Coordinator[T]) Add(ctx context.Context, item T) (int64, error) {
	if err := validateRecord(item); err != nil {
		return 0, err
	}
	id, err := c.repo.Create(ctx, item)
	if err != nil {
		return 0, c.storeFailed(ctx, "create", err)
	}
	c.invalidate(ctx)
	return id, nil
}

// Update validates id and item, updates the record and invalidates the snapshot.
func (c *Coordinator[T]) Update(ctx context.Context, id int64, item T) error {
	if err := validator.PositiveID("id", id); err != nil {
		return err
	}
	if err := validateRecord(item); err != nil {
		return err
	}
	if err := c.repo.Update(ctx, id, item); err != nil {
		return c.storeFailed(ctx, "update", err)
	}
	c.invalidate(ctx)
	return nil
}

// Delete validates id, deletes the record and invalidates the snapshot.
func (c *Coordinator[T]) Delete(ctx context.Context, id int64) error {
	if err := validator.PositiveID("id", id); err != nil {
		return err
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		return c.storeFailed(ctx, "delete", err)
	}
	c.invalidate(ctx)
	return nil
}

// Purge drops the snapshot and, unlike the mutation path, reports cache failures.
func (c *Coordinator[T]) Purge(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.stats.cacheErrors.Add(1)
		return err
	}
	c.stats.invalidations.Add(1)
	c.log.InfoCtx(ctx, "cache purged", zap.String("key", c.key), zap.String("store", c.store.Name()))
	return nil
}

// Stats returns a point-in-time copy of the counters.
func (c *Coordinator[T]) Stats() Stats {
	return c.stats.snapshot()
}

func (c *Coordinator[T]) readSnapshot(ctx context.Context) ([]T, bool, error) {
	data, found, err := c.store.Get(ctx, c.key)
	if err := c.absorb(ctx, "get", err); err != nil {
		return nil, false, err
	}
	if err != nil || !found || len(data) == 0 {
		return nil, false, nil
	}

	var items []T
	if err := c.serializer.Deserialize(data, &items); err != nil {
		c.degraded(ctx, "decode", err)
		return nil, false, nil
	}
	return items, true, nil
}

func (c *Coordinator[T]) load(ctx context.Context) ([]T, error) {
	c.stats.loads.Add(1)
	items, err := c.repo.ListAll(ctx)
	if err != nil {
		return nil, c.storeFailed(ctx, "list", err)
	}
	if items == nil {
		items = []T{}
	}
	if len(items) == 0 {
		return items, nil
	}

	data, err := c.serializer.Serialize(items)
	if err != nil {
		c.degraded(ctx, "encode", err)
		return items, nil
	}
	if err := c.store.Set(ctx, c.key, data, c.ttl); err != nil {
		c.degraded(ctx, "set", err)
	}
	return items, nil
}

// sharedLoad runs one load per key at a time. Waiters share the loader's result,
// including a failure caused by the loader's own cancellation.
func (c *Coordinator[T]) sharedLoad(ctx context.Context) ([]T, error) {
	ch := c.sf.DoChan(c.key, func() (interface{}, error) {
		return c.load(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.DebugCtx(ctx, "cache load shared", zap.String("key", c.key))
		}
		return res.Val.([]T), nil
	}
}

func (c *Coordinator[T]) invalidate(ctx context.Context) {
	if err := c.store.Delete(ctx, c.key); err != nil {
		c.degraded(ctx, "invalidate", err)
		return
	}
	c.stats.invalidations.Add(1)
	c.log.DebugCtx(ctx, "cache invalidated", zap.String("key", c.key))
}

// absorb swallows a cache failure. It returns ctx.Err() when the failure came
// from the caller giving up.
func (c *Coordinator[T]) absorb(ctx context.Context, op string, err error) error {
	switch classify(ctx, err) {
	case failureNone:
		return nil
	case failureCancelled:
		return ctx.Err()
	default:
		c.degraded(ctx, op, err)
		return nil
	}
}

func (c *Coordinator[T]) degraded(ctx context.Context, op string, err error) {
	c.stats.cacheErrors.Add(1)
	c.log.WarnCtx(ctx, "cache degraded",
		zap.String("op", op),
		zap.String("key", c.key),
		zap.String("store", c.store.Name()),
		zap.Error(err),
	)
}

func (c *Coordinator[T]) storeFailed(ctx context.Context, op string, err error) error {
	c.stats.storeErrors.Add(1)
	err = wrapStoreError(op, err)
	c.log.ErrorCtx(ctx, "store failed", zap.String("op", op), zap.Error(err))
	return err
}

// validateRecord rejects a nil item, including a typed nil pointer, before
// asking the item to validate itself.
func validateRecord[T Record](item T) error {
	if v := reflect.ValueOf(any(item)); !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return validator.NilItem("item")
	}
	return validator.Validate(item)
}

package application

import (
	"context"
	"fmt"

	"github.com/KOMKZ/yogan-vehicle-api/cache"
	"github.com/KOMKZ/yogan-vehicle-api/database"
	"github.com/KOMKZ/yogan-vehicle-api/health"
	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/KOMKZ/yogan-vehicle-api/middleware"
	"github.com/KOMKZ/yogan-vehicle-api/redis"
	"github.com/KOMKZ/yogan-vehicle-api/vehicle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VehicleCoordinator is the cache-aside coordinator of the vehicle catalogue.
type VehicleCoordinator = cache.Coordinator[*vehicle.Vehicle]

// CacheStore owns the configured cache backend so the injector closes it on shutdown.
type CacheStore struct {
	cache.Store
}

func (s *CacheStore) Shutdown() error {
	return s.Close()
}

// registerProviders declares every service lazily. Nothing connects until the
// first Invoke, so migrate does not need redis and serve does.
func registerProviders(i do.Injector, cfg *AppConfig) {
	do.ProvideValue(i, cfg)

	do.Provide(i, provideLoggerManager)
	do.Provide(i, provideDatabaseManager)
	do.Provide(i, provideDefaultDB)
	do.Provide(i, provideRedisManager)

	do.Provide(i, provideCacheStore)
	do.Provide(i, provideSerializer)
	do.Provide(i, provideVehicleCoordinator)

	do.Provide(i, provideMetricsRegistry)
	do.Provide(i, provideHTTPMetrics)
	do.Provide(i, provideHealthAggregator)
	do.Provide(i, provideHTTPServer)
}

func provideLoggerManager(i do.Injector) (*logger.Manager, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	return logger.InitManager(cfg.Logger), nil
}

func provideDatabaseManager(i do.Injector) (*database.Manager, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	if _, err := do.Invoke[*logger.Manager](i); err != nil {
		return nil, err
	}
	return database.NewManager(
		cfg.Database.Connections,
		database.NewGormLoggerFactory(logger.GetLogger("sql")),
		logger.GetLogger("database"),
	)
}

func provideDefaultDB(i do.Injector) (*gorm.DB, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	mgr, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	db := mgr.DB(cfg.Database.Default)
	if db == nil {
		return nil, fmt.Errorf("database connection %q not found", cfg.Database.Default)
	}
	return db, nil
}

func provideRedisManager(i do.Injector) (*redis.Manager, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	if _, err := do.Invoke[*logger.Manager](i); err != nil {
		return nil, err
	}
	return redis.NewManager(context.Background(), cfg.Redis.Instances, logger.GetLogger("redis"))
}

// provideCacheStore only touches redis when the cache is backed by it.
func provideCacheStore(i do.Injector) (*CacheStore, error) {
	cfg := do.MustInvoke[*AppConfig](i)

	var resolve cache.RedisResolver
	if cfg.Cache.Enabled && cfg.Cache.Store == cache.StoreRedis {
		mgr, err := do.Invoke[*redis.Manager](i)
		if err != nil {
			return nil, err
		}
		resolve = mgr.Universal
	}

	store, err := cache.NewStore(cfg.Cache, resolve)
	if err != nil {
		return nil, err
	}
	logger.Debug("cache", "cache store ready",
		zap.String("store", store.Name()),
		zap.Bool("enabled", cfg.Cache.Enabled))
	return &CacheStore{Store: store}, nil
}

func provideSerializer(i do.Injector) (cache.Serializer, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	return cache.NewSerializer(cfg.Cache.Serializer)
}

func provideVehicleCoordinator(i do.Injector) (*VehicleCoordinator, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	db, err := do.Invoke[*gorm.DB](i)
	if err != nil {
		return nil, err
	}
	store, err := do.Invoke[*CacheStore](i)
	if err != nil {
		return nil, err
	}
	serializer, err := do.Invoke[cache.Serializer](i)
	if err != nil {
		return nil, err
	}
	return cache.NewCoordinator[*vehicle.Vehicle](
		vehicle.NewRepository(db),
		store.Store,
		serializer,
		cfg.Cache,
		logger.GetLogger("cache"),
	), nil
}

// provideMetricsRegistry uses a dedicated registry so tests can build several apps
// in one process.
func provideMetricsRegistry(i do.Injector) (*prometheus.Registry, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	coordinator, err := do.Invoke[*VehicleCoordinator](i)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		cache.NewStatsCollector(cfg.Metrics.Namespace, coordinator),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func provideHTTPMetrics(i do.Injector) (*middleware.HTTPMetrics, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	reg, err := do.Invoke[*prometheus.Registry](i)
	if err != nil {
		return nil, err
	}
	return middleware.NewHTTPMetrics(cfg.Metrics.Namespace, reg)
}

// provideHealthAggregator treats the database as critical. Redis and the cache
// store only degrade the report since reads fall back to the database.
func provideHealthAggregator(i do.Injector) (*health.Aggregator, error) {
	cfg := do.MustInvoke[*AppConfig](i)
	agg := health.NewAggregator(cfg.Health.Timeout)

	dbMgr, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	agg.Register(database.NewHealthChecker(dbMgr))

	if len(cfg.Redis.Instances) > 0 {
		redisMgr, err := do.Invoke[*redis.Manager](i)
		if err != nil {
			return nil, err
		}
		agg.RegisterOptional(redis.NewHealthChecker(redisMgr))
	}

	if cfg.Cache.Enabled {
		store, err := do.Invoke[*CacheStore](i)
		if err != nil {
			return nil, err
		}
		agg.RegisterOptional(cache.NewHealthChecker(store.Store))
		agg.SetMetadata("cache_store", store.Name())
	}
	return agg, nil
}

func provideHTTPServer(i do.Injector) (*HTTPServer, error) {
	cfg := do.MustInvoke[*AppConfig](i)

	coordinator, err := do.Invoke[*VehicleCoordinator](i)
	if err != nil {
		return nil, err
	}

	deps := serverDeps{
		vehicles: vehicle.NewHandler(coordinator, logger.GetLogger("vehicle")),
	}
	if cfg.Health.Enabled {
		if deps.health, err = do.Invoke[*health.Aggregator](i); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if deps.registry, err = do.Invoke[*prometheus.Registry](i); err != nil {
			return nil, err
		}
		if deps.httpMetrics, err = do.Invoke[*middleware.HTTPMetrics](i); err != nil {
			return nil, err
		}
	}
	return NewHTTPServer(cfg, deps), nil
}

// Package redis owns the process-wide go-redis clients.
package redis

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Manager opens every configured instance up front and closes them together.
// Clients are safe for concurrent use and shared by all callers.
type Manager struct {
	instances map[string]*redis.Client
	clusters  map[string]*redis.ClusterClient
	configs   map[string]Config
	logger    logger.Logger
	mu        sync.RWMutex
}

// NewManager connects to every instance and pings it. On any failure the
// clients opened so far are closed.
func NewManager(ctx context.Context, configs map[string]Config, log logger.Logger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	m := &Manager{
		instances: make(map[string]*redis.Client),
		clusters:  make(map[string]*redis.ClusterClient),
		configs:   make(map[string]Config),
		logger:    log,
	}

	for name, cfg := range configs {
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("invalid config for %s: %w", name, err)
		}

		switch cfg.Mode {
		case ModeStandalone:
			client, err := createClient(ctx, cfg)
			if err != nil {
				_ = m.Close()
				return nil, fmt.Errorf("failed to create client %s: %w", name, err)
			}
			m.instances[name] = client
		case ModeCluster:
			cluster, err := createClusterClient(ctx, cfg)
			if err != nil {
				_ = m.Close()
				return nil, fmt.Errorf("failed to create cluster %s: %w", name, err)
			}
			m.clusters[name] = cluster
		}
		m.configs[name] = cfg

		log.DebugCtx(ctx, "redis connected",
			zap.String("name", name),
			zap.String("mode", cfg.Mode),
			zap.Strings("addrs", cfg.Addrs))
	}

	return m, nil
}

func createClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addrs[0],
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	return client, nil
}

func createClusterClient(ctx context.Context, cfg Config) (*redis.ClusterClient, error) {
	cluster := redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:        cfg.Addrs,
		Password:     cfg.Password,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := cluster.Ping(ctx).Err(); err != nil {
		_ = cluster.Close()
		return nil, fmt.Errorf("ping cluster failed: %w", err)
	}
	return cluster, nil
}

// Client returns the standalone client called name, or nil.
func (m *Manager) Client(name string) *redis.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// Cluster returns the cluster client called name, or nil.
func (m *Manager) Cluster(name string) *redis.ClusterClient {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clusters[name]
}

// Universal returns the client called name whatever its mode.
func (m *Manager) Universal(name string) (redis.UniversalClient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.instances[name]; ok {
		return c, nil
	}
	if c, ok := m.clusters[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("redis instance %q not configured", name)
}

// Names lists every configured instance, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.instances)+len(m.clusters))
	for name := range m.instances {
		names = append(names, name)
	}
	for name := range m.clusters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping pings every instance and returns the first failure.
func (m *Manager) Ping(ctx context.Context) error {
	for _, name := range m.Names() {
		client, err := m.Universal(name)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping %s failed: %w", name, err)
		}
	}
	return nil
}

// Close closes every client. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := context.Background()
	var firstErr error
	closeOne := func(name string, c interface{ Close() error }) {
		if err := c.Close(); err != nil {
			m.logger.ErrorCtx(ctx, "failed to close redis client", zap.String("name", name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		m.logger.DebugCtx(ctx, "redis client closed", zap.String("name", name))
	}

	for name, c := range m.instances {
		closeOne(name, c)
	}
	for name, c := range m.clusters {
		closeOne(name, c)
	}

	m.instances = make(map[string]*redis.Client)
	m.clusters = make(map[string]*redis.ClusterClient)
	return firstErr
}

// Shutdown lets the DI container close the manager.
func (m *Manager) Shutdown() error {
	return m.Close()
}

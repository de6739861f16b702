// Package database owns the gorm connections and a generic repository base.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerFactory builds the gorm logger of one connection.
type GormLoggerFactory func(cfg Config) gormlogger.Interface

// NewGormLoggerFactory routes SQL logging of every connection to log.
func NewGormLoggerFactory(log logger.Logger) GormLoggerFactory {
	return func(cfg Config) gormlogger.Interface {
		level := gormlogger.Silent
		if cfg.EnableLog {
			level = gormlogger.Warn
		}
		return logger.NewGormLogger(logger.GormLoggerConfig{
			SlowThreshold: cfg.SlowThreshold,
			LogLevel:      level,
		}, log)
	}
}

// Manager holds one *gorm.DB per configured connection.
type Manager struct {
	instances     map[string]*gorm.DB
	configs       map[string]Config
	loggerFactory GormLoggerFactory
	logger        logger.Logger
	mu            sync.RWMutex
}

func NewManager(configs map[string]Config, loggerFactory GormLoggerFactory, log logger.Logger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	m := &Manager{
		instances:     make(map[string]*gorm.DB),
		configs:       make(map[string]Config),
		loggerFactory: loggerFactory,
		logger:        log,
	}

	ctx := context.Background()
	for name, cfg := range configs {
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("invalid config for %s: %w", name, err)
		}

		db, err := m.openDB(cfg)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to open database %s: %w", name, err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to get sql.DB for %s: %w", name, err)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		m.instances[name] = db
		m.configs[name] = cfg

		log.DebugCtx(ctx, "database connected", zap.String("name", name), zap.String("driver", cfg.Driver))
	}

	return m, nil
}

func (m *Manager) openDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	gormLog := gormlogger.Default.LogMode(gormlogger.Silent)
	if m.loggerFactory != nil {
		gormLog = m.loggerFactory(cfg)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
}

// DB returns the connection called name, or nil.
func (m *Manager) DB(name string) *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// Names lists the configured connections, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.instances))
	for name := range m.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping checks every connection.
func (m *Manager) Ping(ctx context.Context) error {
	for _, name := range m.Names() {
		sqlDB, err := m.DB(name).DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB for %s: %w", name, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database %s ping failed: %w", name, err)
		}
	}
	return nil
}

func (m *Manager) Stats(name string) (sql.DBStats, error) {
	db := m.DB(name)
	if db == nil {
		return sql.DBStats{}, fmt.Errorf("database %s not found", name)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}

// Close closes every connection and forgets them.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := context.Background()
	var firstErr error
	for name, db := range m.instances {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			m.logger.ErrorCtx(ctx, "failed to close database", zap.String("name", name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.logger.DebugCtx(ctx, "database closed", zap.String("name", name))
	}
	m.instances = make(map[string]*gorm.DB)
	return firstErr
}

// Shutdown lets the DI container close the manager.
func (m *Manager) Shutdown() error {
	return m.Close()
}

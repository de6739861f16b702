// Package application assembles the vehicle API from its configuration: the
// samber/do injector owns every shared resource and closes it on shutdown.
package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/KOMKZ/yogan-vehicle-api/vehicle"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Options locate the configuration on disk.
type Options struct {
	ConfigPath string
	EnvPrefix  string
	Version    string
}

type App struct {
	injector *do.RootScope
	cfg      *AppConfig
	log      *logger.CtxZapLogger
	version  string

	ctx    context.Context
	cancel context.CancelFunc
	state  AppState
	server *HTTPServer
	mu     sync.RWMutex
}

// New loads the configuration described by opts and builds the container.
func New(opts Options) (*App, error) {
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "APP"
	}
	cfg, err := LoadConfig(opts.ConfigPath, opts.EnvPrefix)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, opts.Version)
}

// NewWithConfig builds the container over an already loaded configuration.
// Only the logger is created eagerly.
func NewWithConfig(cfg *AppConfig, version string) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	injector := do.New()
	registerProviders(injector, cfg)
	if _, err := do.Invoke[*logger.Manager](injector); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		injector: injector,
		cfg:      cfg,
		log:      logger.GetLogger("app"),
		version:  version,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateInit,
	}, nil
}

func (a *App) Injector() *do.RootScope {
	return a.injector
}

func (a *App) Config() *AppConfig {
	return a.cfg
}

func (a *App) Version() string {
	return a.version
}

func (a *App) Context() context.Context {
	return a.ctx
}

func (a *App) State() AppState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Setup resolves the HTTP server and, through it, every dependency. Connection
// failures surface here rather than on the first request.
func (a *App) Setup() (*HTTPServer, error) {
	a.setState(StateSetup)
	server, err := do.Invoke[*HTTPServer](a.injector)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return server, nil
}

// Migrate creates or updates the vehicle table. It only opens the database.
func (a *App) Migrate(ctx context.Context) error {
	db, err := do.Invoke[*gorm.DB](a.injector)
	if err != nil {
		return err
	}
	if err := vehicle.Migrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("migrate vehicle: %w", err)
	}
	a.log.InfoCtx(ctx, "migration finished", zap.String("table", vehicle.Vehicle{}.TableName()))
	return nil
}

// PurgeCache drops the cached vehicle snapshot.
func (a *App) PurgeCache(ctx context.Context) error {
	coordinator, err := do.Invoke[*VehicleCoordinator](a.injector)
	if err != nil {
		return err
	}
	return coordinator.Purge(ctx)
}

// RunNonBlocking sets up and starts the HTTP server.
func (a *App) RunNonBlocking() (*HTTPServer, error) {
	server, err := a.Setup()
	if err != nil {
		return nil, err
	}
	if err := server.Start(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()
	a.setState(StateRunning)
	a.log.InfoCtx(a.ctx, "vehicle api running",
		zap.String("version", a.version),
		zap.String("addr", server.Addr()))
	return server, nil
}

// Run serves until SIGINT, SIGTERM or Cancel, then shuts down gracefully.
func (a *App) Run() error {
	if _, err := a.RunNonBlocking(); err != nil {
		_ = a.Shutdown(a.cfg.ApiServer.ShutdownTimeout)
		return err
	}
	a.WaitShutdown()
	return a.Shutdown(a.cfg.ApiServer.ShutdownTimeout)
}

// WaitShutdown blocks until a signal or Cancel. A second signal exits at once.
func (a *App) WaitShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		a.log.InfoCtx(a.ctx, "shutdown signal received", zap.String("signal", sig.String()))
		a.cancel()
		go func() {
			sig := <-quit
			a.log.WarnCtx(context.Background(), "second signal received, forcing exit", zap.String("signal", sig.String()))
			os.Exit(1)
		}()
	case <-a.ctx.Done():
		signal.Stop(quit)
		a.log.InfoCtx(context.Background(), "context cancelled, shutting down")
	}
}

// Cancel triggers WaitShutdown from code.
func (a *App) Cancel() {
	a.cancel()
}

// Shutdown drains the HTTP server, then lets the injector close the cache store,
// redis and the database in reverse dependency order.
func (a *App) Shutdown(timeout time.Duration) error {
	a.setState(StateStopping)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if server := a.startedServer(); server != nil {
		if err := server.Shutdown(ctx); err != nil {
			a.log.ErrorCtx(ctx, "http server shutdown failed", zap.Error(err))
			firstErr = err
		}
	}

	if err := containerShutdownErr(a.injector.ShutdownWithContext(ctx)); err != nil {
		a.log.ErrorCtx(ctx, "container shutdown failed", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	a.cancel()
	a.setState(StateStopped)
	return firstErr
}

// containerShutdownErr turns a shutdown report into an error. The report is
// returned even when every service closed cleanly.
func containerShutdownErr(report *do.ShutdownReport) error {
	if report == nil || len(report.Errors) == 0 {
		return nil
	}
	return report
}

func (a *App) startedServer() *HTTPServer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.server
}

func (a *App) setState(state AppState) {
	a.mu.Lock()
	old := a.state
	a.state = state
	a.mu.Unlock()
	a.log.DebugCtx(a.ctx, "state changed",
		zap.String("from", old.String()),
		zap.String("to", state.String()))
}

package application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/KOMKZ/yogan-vehicle-api/health"
	"github.com/KOMKZ/yogan-vehicle-api/httpx"
	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/KOMKZ/yogan-vehicle-api/middleware"
	"github.com/KOMKZ/yogan-vehicle-api/vehicle"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// serverDeps are the optional parts mounted on the engine. A nil field is skipped.
type serverDeps struct {
	vehicles    *vehicle.Handler
	health      *health.Aggregator
	registry    *prometheus.Registry
	httpMetrics *middleware.HTTPMetrics
}

// HTTPServer owns the gin engine and the listener.
type HTTPServer struct {
	engine   *gin.Engine
	server   *http.Server
	cfg      ApiServerConfig
	addr     string
	log      *logger.CtxZapLogger
	stopOnce sync.Once
	stopErr  error
}

func NewHTTPServer(cfg *AppConfig, deps serverDeps) *HTTPServer {
	gin.DefaultWriter = logger.NewGinLogWriter("http")
	gin.DefaultErrorWriter = logger.NewGinLogWriter("http")
	gin.SetMode(cfg.ApiServer.Mode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	// TraceID first so every later middleware logs with it.
	if tc := cfg.Middleware.TraceID; tc.Enable {
		traceCfg := middleware.DefaultTraceConfig()
		traceCfg.Header = tc.Header
		traceCfg.EnableResponseHeader = tc.EnableResponseHeader
		engine.Use(middleware.TraceID(traceCfg))
	}
	if rl := cfg.Middleware.RequestLog; rl.Enable {
		engine.Use(middleware.RequestLog(middleware.RequestLogConfig{SkipPaths: rl.SkipPaths}))
	}
	if deps.httpMetrics != nil {
		engine.Use(deps.httpMetrics.Handler())
	}
	if cfg.Httpx.Enable {
		engine.Use(httpx.ErrorLoggingMiddleware(cfg.Httpx))
	}
	engine.Use(middleware.Recovery())

	engine.NoRoute(httpx.NoRouteHandler())
	engine.NoMethod(httpx.NoMethodHandler())

	if deps.health != nil {
		health.RegisterRoutes(engine, deps.health)
	}
	if deps.registry != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{})))
	}
	if deps.vehicles != nil {
		deps.vehicles.RegisterRoutes(engine)
	}

	return &HTTPServer{
		engine: engine,
		cfg:    cfg.ApiServer,
		log:    logger.GetLogger("http"),
	}
}

func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Addr is the bound address once Start has returned.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start binds the listener and serves in the background. Bind errors are returned
// directly; port 0 picks a free port.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	s.addr = ln.Addr().String()
	s.server = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.ErrorCtx(context.Background(), "http server stopped", zap.Error(err))
		}
	}()

	s.log.InfoCtx(context.Background(), "http server started",
		zap.String("addr", s.addr),
		zap.String("mode", s.cfg.Mode))
	return nil
}

// Shutdown drains in-flight requests. Later calls return the first result.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		if s.server == nil {
			return
		}
		if err := s.server.Shutdown(ctx); err != nil {
			s.stopErr = fmt.Errorf("shutdown http server: %w", err)
			return
		}
		s.log.InfoCtx(ctx, "http server closed")
	})
	return s.stopErr
}

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/engine"
	"mercator-hq/texsolve/pkg/history"
	"mercator-hq/texsolve/pkg/limits/ratelimit"
	"mercator-hq/texsolve/pkg/telemetry/health"
	"mercator-hq/texsolve/pkg/telemetry/metrics"
	"mercator-hq/texsolve/pkg/telemetry/tracing"
)

// Server serves the conversion API.
type Server struct {
	config      *config.ServerConfig
	healthCfg   *config.HealthConfig
	metricsCfg  *config.MetricsConfig
	queryConfig *config.QueryConfig

	engine  *engine.Engine
	limiter *ratelimit.Limiter
	history history.Storage
	metrics *metrics.Collector
	health  *health.Checker
	logger  *slog.Logger
	version string
	commit  string

	tlsConfig    *tls.Config
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
}

// Option configures a Server.
type Option func(*Server)

// WithHistory exposes the history endpoints backed by store.
func WithHistory(store history.Storage) Option {
	return func(s *Server) { s.history = store }
}

// WithMetrics serves collector on the configured metrics path and records
// HTTP metrics to it.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Server) { s.metrics = collector }
}

// WithHealth sets the checker behind the liveness and readiness probes.
func WithHealth(checker *health.Checker) Option {
	return func(s *Server) { s.health = checker }
}

// WithVersion sets what /version reports.
func WithVersion(version, commit string) Option {
	return func(s *Server) { s.version, s.commit = version, commit }
}

// WithTLS serves HTTPS with tlsConfig.
func WithTLS(tlsConfig *tls.Config) Option {
	return func(s *Server) { s.tlsConfig = tlsConfig }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a server for cfg that converts with eng.
func New(cfg *config.Config, eng *engine.Engine, opts ...Option) *Server {
	s := &Server{
		config:      &cfg.Server,
		healthCfg:   &cfg.Telemetry.Health,
		metricsCfg:  &cfg.Telemetry.Metrics,
		queryConfig: &cfg.History.Query,
		engine:      eng,
		metrics:     metrics.Discard(),
		logger:      slog.Default(),
		limiter:     ratelimit.New(&cfg.Server.RateLimit),
		version:     "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = health.New(cfg.Telemetry.Health.CheckTimeout)
	}
	s.logger = s.logger.With("component", "server")
	return s
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	limit := RateLimitMiddleware(s.limiter, s.logger)
	mux.Handle("POST /v1/convert", limit(http.HandlerFunc(s.handleConvert)))
	mux.Handle("POST /v1/clean", limit(http.HandlerFunc(s.handleClean)))
	mux.HandleFunc("GET /v1/history", s.handleHistoryList)
	mux.HandleFunc("GET /v1/history/{id}", s.handleHistoryGet)

	s.health.Register(mux, s.healthCfg.LivenessPath, s.healthCfg.ReadinessPath, s.version, s.commit)
	if s.metrics.Enabled() {
		mux.Handle(s.metricsCfg.Path, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(s.logger, s.metrics)(handler)
	handler = tracing.HTTPMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	return handler
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or Shutdown is called.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		TLSConfig:    s.tlsConfig,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", ln.Addr().String(), "tls", s.tlsConfig != nil)
		var err error
		if s.tlsConfig != nil {
			err = s.httpServer.ServeTLS(ln, "", "")
		} else {
			err = s.httpServer.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	}
}

// Shutdown stops accepting connections and waits up to ShutdownTimeout for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address once serving, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

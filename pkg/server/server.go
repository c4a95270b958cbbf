package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mosaic-hq/bento/pkg/config"
	"mosaic-hq/bento/pkg/history"
	"mosaic-hq/bento/pkg/layout/registry"
	"mosaic-hq/bento/pkg/monitor"
	"mosaic-hq/bento/pkg/telemetry/health"
	"mosaic-hq/bento/pkg/telemetry/metrics"
)

// Version is the build version, overridden at link time.
var Version = "dev"

// Server is the HTTP API server for layout validation.
type Server struct {
	config    *config.Config
	registry  *registry.Registry
	fetcher   monitor.Fetcher
	storage   history.Storage
	recorder  *history.Recorder
	monitor   *monitor.Monitor
	collector *metrics.Collector
	health    *health.Checker
	logger    *slog.Logger

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options carries the optional collaborators of a server. Any field may
// be nil; the corresponding endpoints then report the feature as
// disabled.
type Options struct {
	// Fetcher retrieves linked entries from the content API.
	Fetcher monitor.Fetcher

	// Storage is the run history backend.
	Storage history.Storage

	// Recorder writes validation runs to storage.
	Recorder *history.Recorder

	// Monitor revalidates tracked fields.
	Monitor *monitor.Monitor

	// Collector records Prometheus metrics.
	Collector *metrics.Collector

	// Health runs component health checks.
	Health *health.Checker

	// Logger is the server's structured logger.
	Logger *slog.Logger
}

// NewServer creates an API server. The registry is required; everything
// in opts is optional.
func NewServer(cfg *config.Config, reg *registry.Registry, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:       cfg,
		registry:     reg,
		fetcher:      opts.Fetcher,
		storage:      opts.Storage,
		recorder:     opts.Recorder,
		monitor:      opts.Monitor,
		collector:    opts.Collector,
		health:       opts.Health,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", s.config.Server.ListenAddress,
			"layouts", s.registry.Len(),
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// setupRoutes builds the route table and wraps it in the middleware
// chain. Order matters: recovery is outermost so it catches panics from
// every other layer, and the timeout is innermost so handlers see the
// deadline in their context.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/validate", s.handleValidate)
	mux.HandleFunc("/v1/layouts", s.handleLayouts)
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.HandleFunc("/v1/tracked", s.handleTracked)
	mux.HandleFunc("/v1/revalidate", s.handleRevalidate)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/version", s.handleVersion)

	openPaths := []string{"/health", "/ready", "/version"}
	if s.collector != nil && s.config.Telemetry.Metrics.Enabled {
		path := s.config.Telemetry.Metrics.Path
		mux.Handle(path, s.collector.Handler())
		openPaths = append(openPaths, path)
	}

	var handler http.Handler = mux
	handler = TimeoutMiddleware(s.config.Server.RequestTimeout)(handler)
	handler = AuthMiddleware(s.config.Server.AuthToken, openPaths)(handler)
	handler = CORSMiddleware(&s.config.Server.CORS)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = LoggingMiddleware(s.logger, s.collector)(handler)
	handler = RecoveryMiddleware(s.logger)(handler)

	return handler
}

// Handler returns the server's HTTP handler with the full middleware
// chain applied. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// RequestObserver records one finished HTTP request
type RequestObserver interface {
	ObserveRequest(method string, status int)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     chi.Router
	version    string
	logger     *slog.Logger

	pageService driving.PageService
	renderer    Renderer

	// Infrastructure
	checks   map[string]Pinger
	runtime  *domain.RuntimeConfig
	observer RequestObserver
	metrics  http.Handler
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// Deps holds what the server needs to serve pages and report health
type Deps struct {
	PageService driving.PageService
	Renderer    Renderer              // Default: NewTemplateRenderer()
	Checks      map[string]Pinger     // Backends pinged by /ready
	Runtime     *domain.RuntimeConfig // Optional, reported by /ready
	Observer    RequestObserver       // Optional
	Metrics     http.Handler          // Optional, served on /metrics
	Logger      *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NewTemplateRenderer()
	}

	s := &Server{
		router:      chi.NewRouter(),
		version:     cfg.Version,
		logger:      logger,
		pageService: deps.PageService,
		renderer:    renderer,
		checks:      deps.Checks,
		runtime:     deps.Runtime,
		observer:    deps.Observer,
		metrics:     deps.Metrics,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Pages wait for first-visit ingestion before rendering
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
// chi does not clean paths, so encoded slashes and empty segments in the
// page route reach the handler untouched.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(NewLoggingMiddleware(s.logger, s.observer).Handler)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Get("/version", s.handleVersion)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics)
	}

	// Browser probes that must not be mistaken for pages to index
	s.router.Get("/favicon.ico", s.handleNoContent)
	s.router.Get("/robots.txt", s.handleRobots)

	s.router.Get("/*", s.handlePage)
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

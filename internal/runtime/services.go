package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services.
// The embedding service can be swapped or cleared while the server runs.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil)
	embeddingService driven.EmbeddingService
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil && s.embeddingService != svc {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// ValidateAndSetEmbedding validates connectivity before setting embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	s.config.SetEmbeddingAvailable(false)

	return nil
}

// Embedder returns an EmbeddingService that always forwards to the current
// embedding service. Calls fail with domain.ErrServiceUnavailable while none
// is set, so consumers built at startup keep working after a swap.
func (s *Services) Embedder() driven.EmbeddingService {
	return &currentEmbedder{services: s}
}

// MonitorEmbedding health checks the current embedding service every
// interval and keeps the availability flag in step with the result.
// Blocks until ctx is cancelled.
func (s *Services) MonitorEmbedding(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkEmbedding(ctx, logger)
		}
	}
}

func (s *Services) checkEmbedding(ctx context.Context, logger *slog.Logger) {
	svc := s.EmbeddingService()
	if svc == nil {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := svc.HealthCheck(checkCtx)
	was := s.config.EmbeddingAvailable()
	s.config.SetEmbeddingAvailable(err == nil)

	switch {
	case err != nil && was:
		logger.Warn("embedding service unavailable", "model", svc.Model(), "error", err)
	case err == nil && !was:
		logger.Info("embedding service recovered", "model", svc.Model())
	}
}

// currentEmbedder resolves the embedding service on every call
type currentEmbedder struct {
	services *Services
}

func (e *currentEmbedder) get() (driven.EmbeddingService, error) {
	svc := e.services.EmbeddingService()
	if svc == nil {
		return nil, fmt.Errorf("no embedding service configured: %w", domain.ErrServiceUnavailable)
	}
	return svc, nil
}

func (e *currentEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	svc, err := e.get()
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, texts)
}

func (e *currentEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	svc, err := e.get()
	if err != nil {
		return nil, err
	}
	return svc.EmbedQuery(ctx, query)
}

func (e *currentEmbedder) Dimensions() int {
	if svc := e.services.EmbeddingService(); svc != nil {
		return svc.Dimensions()
	}
	return 0
}

func (e *currentEmbedder) Model() string {
	if svc := e.services.EmbeddingService(); svc != nil {
		return svc.Model()
	}
	return ""
}

func (e *currentEmbedder) HealthCheck(ctx context.Context) error {
	svc, err := e.get()
	if err != nil {
		return err
	}
	return svc.HealthCheck(ctx)
}

// Close is a no-op; the Services registry owns the underlying service
func (e *currentEmbedder) Close() error {
	return nil
}

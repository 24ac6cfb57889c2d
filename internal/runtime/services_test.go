package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// mockEmbeddingService is a mock implementation for testing
type mockEmbeddingService struct {
	healthCheckErr error
	closed         bool
	embedCalls     int
}

func (m *mockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.embedCalls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (m *mockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 2
}

func (m *mockEmbeddingService) Model() string {
	return "test-model"
}

func (m *mockEmbeddingService) HealthCheck(ctx context.Context) error {
	return m.healthCheckErr
}

func (m *mockEmbeddingService) Close() error {
	m.closed = true
	return nil
}

func newTestServices() (*Services, *domain.RuntimeConfig) {
	config := domain.NewRuntimeConfig(domain.BackendRedis, domain.BackendRedis, domain.SessionPolicyPage)
	return NewServices(config), config
}

func TestNewServices(t *testing.T) {
	services, config := newTestServices()

	if services == nil {
		t.Fatal("expected non-nil services")
	}
	if services.Config() != config {
		t.Error("expected config to match")
	}
}

func TestServices_EmbeddingService(t *testing.T) {
	services, config := newTestServices()

	// Initially nil
	if services.EmbeddingService() != nil {
		t.Error("expected nil embedding service initially")
	}

	mock := &mockEmbeddingService{}
	services.SetEmbeddingService(mock)

	if services.EmbeddingService() == nil {
		t.Error("expected non-nil embedding service after set")
	}
	if !config.EmbeddingAvailable() {
		t.Error("expected embedding to be available")
	}

	services.SetEmbeddingService(nil)
	if services.EmbeddingService() != nil {
		t.Error("expected nil embedding service after clearing")
	}
	if config.EmbeddingAvailable() {
		t.Error("expected embedding to be unavailable")
	}
	if !mock.closed {
		t.Error("expected old service to be closed")
	}
}

func TestServices_SetSameServiceKeepsItOpen(t *testing.T) {
	services, _ := newTestServices()
	mock := &mockEmbeddingService{}

	services.SetEmbeddingService(mock)
	services.SetEmbeddingService(mock)

	if mock.closed {
		t.Error("re-setting the same service must not close it")
	}
}

func TestServices_ValidateAndSetEmbedding(t *testing.T) {
	services, _ := newTestServices()
	ctx := context.Background()

	t.Run("successful validation", func(t *testing.T) {
		mock := &mockEmbeddingService{}
		err := services.ValidateAndSetEmbedding(ctx, mock)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if services.EmbeddingService() == nil {
			t.Error("expected embedding service to be set")
		}
	})

	t.Run("failed validation", func(t *testing.T) {
		mock := &mockEmbeddingService{healthCheckErr: errors.New("connection failed")}
		err := services.ValidateAndSetEmbedding(ctx, mock)
		if err == nil {
			t.Error("expected error")
		}
		if !mock.closed {
			t.Error("expected failed service to be closed")
		}
	})

	t.Run("nil service", func(t *testing.T) {
		err := services.ValidateAndSetEmbedding(ctx, nil)
		if err != nil {
			t.Errorf("unexpected error for nil service: %v", err)
		}
	})
}

func TestServices_Close(t *testing.T) {
	services, config := newTestServices()

	embMock := &mockEmbeddingService{}
	services.SetEmbeddingService(embMock)

	if err := services.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !embMock.closed {
		t.Error("expected embedding service to be closed")
	}
	if config.EmbeddingAvailable() {
		t.Error("expected embedding to be unavailable after close")
	}
}

func TestServices_ReplaceService_ClosesOld(t *testing.T) {
	services, _ := newTestServices()

	old := &mockEmbeddingService{}
	replacement := &mockEmbeddingService{}

	services.SetEmbeddingService(old)
	services.SetEmbeddingService(replacement)

	if !old.closed {
		t.Error("expected old service to be closed when replaced")
	}
	if replacement.closed {
		t.Error("expected new service to remain open")
	}
}

func TestEmbedder_NoServiceIsUnavailable(t *testing.T) {
	services, _ := newTestServices()
	embedder := services.Embedder()

	_, err := embedder.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
	if _, err := embedder.EmbedQuery(context.Background(), "a"); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
	if embedder.Dimensions() != 0 || embedder.Model() != "" {
		t.Error("expected zero dimensions and empty model without a service")
	}
}

func TestEmbedder_FollowsSwaps(t *testing.T) {
	services, _ := newTestServices()
	embedder := services.Embedder()

	first := &mockEmbeddingService{}
	services.SetEmbeddingService(first)
	if _, err := embedder.Embed(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := &mockEmbeddingService{}
	services.SetEmbeddingService(second)
	if _, err := embedder.Embed(context.Background(), []string{"c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.embedCalls != 1 || second.embedCalls != 1 {
		t.Errorf("expected one call each, got %d and %d", first.embedCalls, second.embedCalls)
	}
	if embedder.Model() != "test-model" || embedder.Dimensions() != 2 {
		t.Error("expected model and dimensions of the current service")
	}

	// Closing the view must not close the shared service
	_ = embedder.Close()
	if second.closed {
		t.Error("embedder view must not close the registered service")
	}
}

func TestCheckEmbedding_TogglesAvailability(t *testing.T) {
	services, config := newTestServices()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mock := &mockEmbeddingService{}
	services.SetEmbeddingService(mock)

	mock.healthCheckErr = errors.New("timeout")
	services.checkEmbedding(context.Background(), logger)
	if config.EmbeddingAvailable() {
		t.Error("expected embedding to be marked unavailable")
	}

	mock.healthCheckErr = nil
	services.checkEmbedding(context.Background(), logger)
	if !config.EmbeddingAvailable() {
		t.Error("expected embedding to recover")
	}
}

func TestMonitorEmbedding_StopsOnCancel(t *testing.T) {
	services, _ := newTestServices()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		services.MonitorEmbedding(ctx, time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

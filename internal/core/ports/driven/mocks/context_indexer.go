package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// MockContextIndexer records every ingestion request
type MockContextIndexer struct {
	mu      sync.Mutex
	sources []domain.ContentSource

	// AddFn overrides the default (successful) behaviour when set
	AddFn func(ctx context.Context, source domain.ContentSource) error
}

// NewMockContextIndexer creates a new MockContextIndexer
func NewMockContextIndexer() *MockContextIndexer {
	return &MockContextIndexer{}
}

func (m *MockContextIndexer) Add(ctx context.Context, source domain.ContentSource) error {
	m.mu.Lock()
	m.sources = append(m.sources, source)
	fn := m.AddFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, source)
	}
	return nil
}

// Calls returns every source passed to Add, in call order
func (m *MockContextIndexer) Calls() []domain.ContentSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ContentSource, len(m.sources))
	copy(out, m.sources)
	return out
}

// CallCount returns how many times Add was invoked
func (m *MockContextIndexer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sources)
}

package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// MockVectorStore keeps chunks in a map keyed by chunk ID
type MockVectorStore struct {
	mu     sync.Mutex
	chunks map[string]*domain.Chunk

	UpsertErr error
}

// NewMockVectorStore creates a new MockVectorStore
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{chunks: make(map[string]*domain.Chunk)}
}

func (m *MockVectorStore) Upsert(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *MockVectorStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}

// BySource returns stored chunks for a source (for test assertions)
func (m *MockVectorStore) BySource(source string) []*domain.Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Chunk
	for _, c := range m.chunks {
		if c.Source == source {
			out = append(out, c)
		}
	}
	return out
}

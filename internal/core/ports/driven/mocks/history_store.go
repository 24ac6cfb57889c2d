package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// HistoryCall captures the arguments of one GetMessages call
type HistoryCall struct {
	SessionID string
	Amount    int
}

// MockHistoryStore is an in-memory HistoryStore for testing
type MockHistoryStore struct {
	mu       sync.Mutex
	messages map[string][]domain.Message
	calls    []HistoryCall

	GetErr error
}

// NewMockHistoryStore creates a new MockHistoryStore
func NewMockHistoryStore() *MockHistoryStore {
	return &MockHistoryStore{
		messages: make(map[string][]domain.Message),
	}
}

func (m *MockHistoryStore) GetMessages(ctx context.Context, sessionID string, amount int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, HistoryCall{SessionID: sessionID, Amount: amount})
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	msgs := m.messages[sessionID]
	if amount <= 0 {
		return []domain.Message{}, nil
	}
	if len(msgs) > amount {
		msgs = msgs[len(msgs)-amount:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MockHistoryStore) AddMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[sessionID] = append(m.messages[sessionID], msg)
	return nil
}

// Calls returns the recorded GetMessages calls
func (m *MockHistoryStore) Calls() []HistoryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HistoryCall, len(m.calls))
	copy(out, m.calls)
	return out
}

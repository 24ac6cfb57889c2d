package mocks

import (
	"context"
	"sync"
)

// MockMembershipStore is an in-memory MembershipStore for testing.
// Error hooks let tests simulate an unreachable store.
type MockMembershipStore struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}

	IsMemberErr error
	AddErr      error
	PingErr     error

	IsMemberCalls int
	AddCalls      int
}

// NewMockMembershipStore creates a new MockMembershipStore
func NewMockMembershipStore() *MockMembershipStore {
	return &MockMembershipStore{
		sets: make(map[string]map[string]struct{}),
	}
}

func (m *MockMembershipStore) IsMember(ctx context.Context, set, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsMemberCalls++
	if m.IsMemberErr != nil {
		return false, m.IsMemberErr
	}
	_, ok := m.sets[set][member]
	return ok, nil
}

func (m *MockMembershipStore) Add(ctx context.Context, set, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	if m.sets[set] == nil {
		m.sets[set] = make(map[string]struct{})
	}
	m.sets[set][member] = struct{}{}
	return nil
}

func (m *MockMembershipStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Has checks membership without counting a call (for test assertions)
func (m *MockMembershipStore) Has(set, member string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sets[set][member]
	return ok
}

// Seed inserts members directly (for test setup)
func (m *MockMembershipStore) Seed(set string, members ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[set] == nil {
		m.sets[set] = make(map[string]struct{})
	}
	for _, member := range members {
		m.sets[set][member] = struct{}{}
	}
}

package mocks

import (
	"sync"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// MockPageMetrics counts observations in memory
type MockPageMetrics struct {
	mu       sync.Mutex
	outcomes map[domain.IndexOutcome]int
	loads    int
	failures int
}

// NewMockPageMetrics creates a new MockPageMetrics
func NewMockPageMetrics() *MockPageMetrics {
	return &MockPageMetrics{outcomes: make(map[domain.IndexOutcome]int)}
}

func (m *MockPageMetrics) ObserveIndexOutcome(outcome domain.IndexOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *MockPageMetrics) ObservePageLoad(d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if err != nil {
		m.failures++
	}
}

// Outcome returns how often an outcome was observed
func (m *MockPageMetrics) Outcome(outcome domain.IndexOutcome) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[outcome]
}

// Loads returns total and failed page loads
func (m *MockPageMetrics) Loads() (total, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads, m.failures
}

package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// MockPageFetcher serves canned pages keyed by URL
type MockPageFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string

	FetchErr error
}

// NewMockPageFetcher creates a new MockPageFetcher
func NewMockPageFetcher() *MockPageFetcher {
	return &MockPageFetcher{pages: make(map[string]string)}
}

// SetPage registers readable text for a URL
func (m *MockPageFetcher) SetPage(url, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[url] = text
}

func (m *MockPageFetcher) Fetch(ctx context.Context, url string) (*domain.FetchedPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	text, ok := m.pages[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.FetchedPage{
		URL:       url,
		Title:     url,
		Text:      text,
		FetchedAt: time.Now(),
	}, nil
}

// Calls returns fetched URLs in call order
func (m *MockPageFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

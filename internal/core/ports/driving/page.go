package driving

import (
	"context"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// PageRequest carries the inputs of one chat page render
type PageRequest struct {
	// Segments are the raw, still percent-encoded route segments in order.
	// Nil or empty means the route parameter was absent.
	Segments []string

	// SessionToken is the value of the inbound session cookie, empty if absent
	SessionToken string
}

// PageService prepares a chat page: URL reconstruction, lazy indexing and history
type PageService interface {
	// Load reconstructs the target URL, makes sure it has been handed to the
	// indexer once, and returns the session id and seeded history for rendering.
	Load(ctx context.Context, req PageRequest) (*domain.PageView, error)
}

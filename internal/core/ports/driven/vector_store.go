package driven

import (
	"context"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// VectorStore persists embedded chunks for retrieval
type VectorStore interface {
	// Upsert embeds and stores chunks. Chunks with an existing ID are replaced.
	Upsert(ctx context.Context, chunks []*domain.Chunk) error

	// Count returns the number of stored chunks
	Count() int
}

package driven

import (
	"context"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// ContextIndexer ingests content into the retrieval context of the chat service.
// Ingestion is not idempotent from the caller's point of view: the caller must
// avoid duplicate calls for the same source.
type ContextIndexer interface {
	// Add fetches, chunks and embeds the given source.
	// May be slow and may fail; a failure means nothing should be recorded as indexed.
	Add(ctx context.Context, source domain.ContentSource) error
}

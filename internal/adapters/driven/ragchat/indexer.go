package ragchat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pagechat/internal/postprocessors"
)

// Ensure Indexer implements ContextIndexer
var _ driven.ContextIndexer = (*Indexer)(nil)

// sourceDeleter is implemented by vector stores that can drop a page's
// chunks before it is re-ingested.
type sourceDeleter interface {
	DeleteSource(ctx context.Context, source string) error
}

// Indexer adds content sources to the chat service's retrieval context.
// HTML sources are fetched and reduced to readable text, text sources are
// used as given. Both are chunked, embedded and stored.
type Indexer struct {
	fetcher  driven.PageFetcher
	store    driven.VectorStore
	pipeline driven.ChunkPipeline
	logger   *slog.Logger
}

// IndexerConfig holds indexer dependencies
type IndexerConfig struct {
	Fetcher  driven.PageFetcher
	Store    driven.VectorStore   // nil disables ingestion
	Pipeline driven.ChunkPipeline // Default: postprocessors.DefaultPipeline()
	Logger   *slog.Logger
}

// NewIndexer creates a new Indexer
func NewIndexer(cfg IndexerConfig) *Indexer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pipeline := cfg.Pipeline
	if pipeline == nil {
		pipeline = postprocessors.DefaultPipeline()
	}
	return &Indexer{
		fetcher:  cfg.Fetcher,
		store:    cfg.Store,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Add ingests one content source.
func (ix *Indexer) Add(ctx context.Context, src domain.ContentSource) error {
	if src.Source == "" {
		return fmt.Errorf("%w: empty content source", domain.ErrInvalidInput)
	}
	if ix.store == nil {
		return fmt.Errorf("%w: no vector store configured", domain.ErrServiceUnavailable)
	}

	start := time.Now()
	var (
		source   string
		text     string
		metadata = map[string]string{"content_type": string(src.Type)}
	)

	switch src.Type {
	case domain.ContentTypeHTML:
		if ix.fetcher == nil {
			return fmt.Errorf("%w: no page fetcher configured", domain.ErrServiceUnavailable)
		}
		page, err := ix.fetcher.Fetch(ctx, src.Source)
		if err != nil {
			return fmt.Errorf("%w: fetch %s: %w", domain.ErrIngestionFailed, src.Source, err)
		}
		source = src.Source
		text = page.Text
		if page.Title != "" {
			metadata["title"] = page.Title
		}
		if page.SiteName != "" {
			metadata["site_name"] = page.SiteName
		}
	case domain.ContentTypeText:
		source = TextSourceID(src.Source)
		text = src.Source
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedContent, src.Type)
	}

	spans := ix.pipeline.Process(text)
	if len(spans) == 0 {
		return fmt.Errorf("%w: no readable text in %s", domain.ErrIngestionFailed, source)
	}

	now := time.Now()
	chunks := make([]*domain.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = &domain.Chunk{
			ID:        ChunkID(source, span.Position),
			Source:    source,
			Content:   span.Content,
			Position:  span.Position,
			Metadata:  metadata,
			CreatedAt: now,
		}
	}

	if d, ok := ix.store.(sourceDeleter); ok {
		if err := d.DeleteSource(ctx, source); err != nil {
			ix.logger.Warn("failed to clear previous chunks", "source", source, "error", err)
		}
	}

	if err := ix.store.Upsert(ctx, chunks); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: store chunks for %s: %w", domain.ErrIngestionFailed, source, err)
	}

	ix.logger.Debug("ingested source",
		"source", source,
		"type", src.Type,
		"chunks", len(chunks),
		"duration", time.Since(start),
	)
	return nil
}

// ChunkID derives a stable chunk identifier so re-ingesting a source
// replaces its chunks instead of duplicating them.
func ChunkID(source string, position int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", source, position))).String()
}

// TextSourceID names a raw text source by its content.
func TextSourceID(text string) string {
	return "text:" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(text)).String()
}

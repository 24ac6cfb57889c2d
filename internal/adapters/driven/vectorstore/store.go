package vectorstore

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*Store)(nil)

// CollectionName is the chromem collection holding every indexed page
const CollectionName = "indexed-pages"

// Store implements VectorStore on an embedded chromem-go database.
// Embeddings are computed in batches through the EmbeddingService before
// documents are added, so chromem only calls the embedding function for queries.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   driven.EmbeddingService
}

// SearchResult is a single similarity hit
type SearchResult struct {
	Chunk *domain.Chunk
	Score float32
}

// New opens a vector store. With an empty dir the store lives in memory only;
// otherwise documents are persisted under dir.
func New(dir string, embedder driven.EmbeddingService) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedding service is required")
	}

	var db *chromem.DB
	if dir == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create vector dir: %w", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(dir, false)
		if err != nil {
			return nil, fmt.Errorf("open vector db: %w", err)
		}
	}

	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(CollectionName, map[string]string{
		"embedding_model": embedder.Model(),
	}, embedFn)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	return &Store{db: db, collection: collection, embedder: embedder}, nil
}

// Upsert embeds and stores chunks. Re-adding a chunk ID replaces it.
func (s *Store) Upsert(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("embed chunks: empty vector for chunk %s", c.ID)
		}
		metadata := make(map[string]string, len(c.Metadata)+2)
		for k, v := range c.Metadata {
			metadata[k] = v
		}
		metadata["source"] = c.Source
		metadata["position"] = strconv.Itoa(c.Position)

		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  metadata,
			Embedding: vectors[i],
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks
func (s *Store) Count() int {
	return s.collection.Count()
}

// Search returns up to limit chunks most similar to query, best first.
// An optional source restricts results to one page.
func (s *Store) Search(ctx context.Context, query string, limit int, source string) ([]SearchResult, error) {
	count := s.collection.Count()
	if count == 0 || limit <= 0 {
		return nil, nil
	}
	limit = min(limit, count)

	var where map[string]string
	if source != "" {
		where = map[string]string{"source": source}
	}

	results, err := s.collection.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		position, _ := strconv.Atoi(r.Metadata["position"])
		out = append(out, SearchResult{
			Chunk: &domain.Chunk{
				ID:       r.ID,
				Source:   r.Metadata["source"],
				Content:  r.Content,
				Position: position,
				Metadata: r.Metadata,
			},
			Score: r.Similarity,
		})
	}
	return out, nil
}

// DeleteSource removes every chunk of a page
func (s *Store) DeleteSource(ctx context.Context, source string) error {
	if err := s.collection.Delete(ctx, map[string]string{"source": source}, nil); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

package ragchat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven/mocks"
)

const pageURL = "https://docs.example.com/intro"

type deletingStore struct {
	*mocks.MockVectorStore
	deleted []string
}

func (d *deletingStore) DeleteSource(_ context.Context, source string) error {
	d.deleted = append(d.deleted, source)
	return nil
}

func longText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "Step %d installs the tool. ", i)
	}
	return b.String()
}

func newTestIndexer() (*Indexer, *mocks.MockPageFetcher, *mocks.MockVectorStore) {
	fetcher := mocks.NewMockPageFetcher()
	store := mocks.NewMockVectorStore()
	return NewIndexer(IndexerConfig{Fetcher: fetcher, Store: store}), fetcher, store
}

func TestIndexer_Add_HTML(t *testing.T) {
	ix, fetcher, store := newTestIndexer()
	fetcher.SetPage(pageURL, longText(150))

	err := ix.Add(context.Background(), domain.HTMLSource(pageURL))
	require.NoError(t, err)

	assert.Equal(t, []string{pageURL}, fetcher.Calls())
	chunks := store.BySource(pageURL)
	require.Greater(t, len(chunks), 1, "long page should produce several chunks")
	for _, c := range chunks {
		assert.Equal(t, ChunkID(pageURL, c.Position), c.ID)
		assert.Equal(t, "html", c.Metadata["content_type"])
		assert.Equal(t, pageURL, c.Metadata["title"])
		assert.LessOrEqual(t, len(c.Content), 1000)
	}
}

func TestIndexer_Add_HTML_Reingest_NoDuplicates(t *testing.T) {
	ix, fetcher, store := newTestIndexer()
	fetcher.SetPage(pageURL, longText(200))

	require.NoError(t, ix.Add(context.Background(), domain.HTMLSource(pageURL)))
	first := store.Count()
	require.NoError(t, ix.Add(context.Background(), domain.HTMLSource(pageURL)))

	assert.Equal(t, first, store.Count())
}

func TestIndexer_Add_HTML_FetchError(t *testing.T) {
	ix, fetcher, store := newTestIndexer()
	fetcher.FetchErr = errors.New("connection refused")

	err := ix.Add(context.Background(), domain.HTMLSource(pageURL))
	assert.ErrorIs(t, err, domain.ErrIngestionFailed)
	assert.Zero(t, store.Count())
}

func TestIndexer_Add_HTML_EmptyPage(t *testing.T) {
	ix, fetcher, _ := newTestIndexer()
	fetcher.SetPage(pageURL, "   \n  ")

	err := ix.Add(context.Background(), domain.HTMLSource(pageURL))
	assert.ErrorIs(t, err, domain.ErrIngestionFailed)
}

func TestIndexer_Add_Text(t *testing.T) {
	ix, fetcher, store := newTestIndexer()

	err := ix.Add(context.Background(), domain.ContentSource{Type: domain.ContentTypeText, Source: "Some notes about the product."})
	require.NoError(t, err)

	assert.Empty(t, fetcher.Calls(), "text sources are not fetched")
	chunks := store.BySource(TextSourceID("Some notes about the product."))
	require.Len(t, chunks, 1)
	assert.Equal(t, "Some notes about the product.", chunks[0].Content)
}

func TestIndexer_Add_UnsupportedType(t *testing.T) {
	ix, _, _ := newTestIndexer()

	err := ix.Add(context.Background(), domain.ContentSource{Type: "pdf", Source: pageURL})
	assert.ErrorIs(t, err, domain.ErrUnsupportedContent)
}

func TestIndexer_Add_EmptySource(t *testing.T) {
	ix, _, _ := newTestIndexer()

	err := ix.Add(context.Background(), domain.ContentSource{Type: domain.ContentTypeHTML})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexer_Add_NoStore(t *testing.T) {
	ix := NewIndexer(IndexerConfig{Fetcher: mocks.NewMockPageFetcher()})

	err := ix.Add(context.Background(), domain.HTMLSource(pageURL))
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestIndexer_Add_StoreError(t *testing.T) {
	ix, fetcher, store := newTestIndexer()
	fetcher.SetPage(pageURL, "content")
	store.UpsertErr = errors.New("disk full")

	err := ix.Add(context.Background(), domain.HTMLSource(pageURL))
	assert.ErrorIs(t, err, domain.ErrIngestionFailed)
}

func TestIndexer_Add_ClearsPreviousChunks(t *testing.T) {
	fetcher := mocks.NewMockPageFetcher()
	fetcher.SetPage(pageURL, "content")
	store := &deletingStore{MockVectorStore: mocks.NewMockVectorStore()}
	ix := NewIndexer(IndexerConfig{Fetcher: fetcher, Store: store})

	require.NoError(t, ix.Add(context.Background(), domain.HTMLSource(pageURL)))
	assert.Equal(t, []string{pageURL}, store.deleted)
}

func TestChunkID_Deterministic(t *testing.T) {
	assert.Equal(t, ChunkID(pageURL, 3), ChunkID(pageURL, 3))
	assert.NotEqual(t, ChunkID(pageURL, 3), ChunkID(pageURL, 4))
	assert.NotEqual(t, ChunkID(pageURL, 0), ChunkID(pageURL+"/", 0))
}

package driven

import (
	"context"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// PageFetcher downloads a remote HTML page and extracts its readable text
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.FetchedPage, error)
}

package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pagechat/internal/extractors"
)

// Ensure Fetcher implements PageFetcher
var _ driven.PageFetcher = (*Fetcher)(nil)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxBytes  = 5 << 20
	defaultUserAgent = "sercha-pagechat/1.0 (+https://github.com/custodia-labs/sercha-pagechat)"
)

// Fetcher downloads pages over HTTP and extracts readable text from them
type Fetcher struct {
	client     *http.Client
	extractors driven.ExtractorRegistry
	maxBytes   int64
	userAgent  string
}

// Config holds fetcher settings. Zero values select defaults.
type Config struct {
	Timeout    time.Duration
	MaxBytes   int64
	UserAgent  string
	Client     *http.Client             // Optional, overrides Timeout
	Extractors driven.ExtractorRegistry // Default: extractors.DefaultRegistry()
}

// NewFetcher creates a new page fetcher
func NewFetcher(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	registry := cfg.Extractors
	if registry == nil {
		registry = extractors.DefaultRegistry()
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Fetcher{
		client:     client,
		extractors: registry,
		maxBytes:   maxBytes,
		userAgent:  userAgent,
	}
}

// Fetch downloads rawURL and extracts its text.
// Only absolute http and https URLs are fetched.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.FetchedPage, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url %q: %v", domain.ErrInvalidInput, rawURL, err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" || pageURL.Host == "" {
		return nil, fmt.Errorf("%w: not an absolute http(s) url: %q", domain.ErrInvalidInput, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrNotFound, rawURL, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrUnsupportedContent, rawURL, f.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	extractor := f.extractors.Get(contentType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedContent, contentType)
	}

	// Relative links resolve against the final URL after redirects
	out, err := extractor.Extract(body, resp.Request.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", rawURL, err)
	}

	return &domain.FetchedPage{
		URL:       rawURL,
		Title:     out.Title,
		Text:      out.Text,
		SiteName:  out.SiteName,
		FetchedAt: time.Now(),
	}, nil
}

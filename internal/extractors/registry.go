package extractors

import (
	"bytes"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	readability "github.com/go-shiori/go-readability"

	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry implements ExtractorRegistry with priority-based selection.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an extractor.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extractors = append(r.extractors, extractor)
	slices.SortStableFunc(r.extractors, func(a, b driven.TextExtractor) int {
		return b.Priority() - a.Priority()
	})
}

// Get returns the highest priority extractor matching mimeType, or nil.
func (r *Registry) Get(mimeType string) driven.TextExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mimeType = baseMIMEType(mimeType)
	for _, e := range r.extractors {
		if matchesMIMEType(e.SupportedTypes(), mimeType) {
			return e
		}
	}
	return nil
}

// List returns all registered MIME types, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []string
	for _, e := range r.extractors {
		types = append(types, e.SupportedTypes()...)
	}
	slices.Sort(types)
	return slices.Compact(types)
}

// baseMIMEType lower-cases a Content-Type and strips its parameters.
func baseMIMEType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i != -1 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// matchesMIMEType reports whether mimeType is covered by supported.
// "text/*" matches any text type and "*/*" matches everything.
func matchesMIMEType(supported []string, mimeType string) bool {
	for _, s := range supported {
		s = strings.ToLower(s)
		switch {
		case s == "*/*", s == mimeType:
			return true
		case strings.HasSuffix(s, "/*") && strings.HasPrefix(mimeType, strings.TrimSuffix(s, "*")):
			return true
		}
	}
	return false
}

// DefaultRegistry creates a registry with the built-in extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PlaintextExtractor{})
	r.Register(&MarkdownExtractor{})
	r.Register(&HTMLExtractor{})
	return r
}

// HTMLExtractor pulls the main article text out of an HTML page.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(body []byte, pageURL *url.URL) (*driven.Extraction, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}
	return &driven.Extraction{
		Title:    strings.TrimSpace(article.Title),
		Text:     strings.TrimSpace(article.TextContent),
		SiteName: strings.TrimSpace(article.SiteName),
	}, nil
}

func (e *HTMLExtractor) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (e *HTMLExtractor) Priority() int {
	return 50
}

// MarkdownExtractor keeps Markdown as-is apart from line endings. The first
// level-one heading becomes the title.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(body []byte, _ *url.URL) (*driven.Extraction, error) {
	text := normaliseNewlines(string(body))
	var title string
	for _, line := range strings.Split(text, "\n") {
		if h, ok := strings.CutPrefix(line, "# "); ok {
			title = strings.TrimSpace(h)
			break
		}
	}
	return &driven.Extraction{Title: title, Text: strings.TrimSpace(text)}, nil
}

func (e *MarkdownExtractor) SupportedTypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (e *MarkdownExtractor) Priority() int {
	return 50
}

// PlaintextExtractor is the fallback for any text-like response.
type PlaintextExtractor struct{}

func (e *PlaintextExtractor) Extract(body []byte, _ *url.URL) (*driven.Extraction, error) {
	return &driven.Extraction{Text: strings.TrimSpace(normaliseNewlines(string(body)))}, nil
}

func (e *PlaintextExtractor) SupportedTypes() []string {
	return []string{"text/*", "application/json", "application/xml"}
}

func (e *PlaintextExtractor) Priority() int {
	return 1
}

func normaliseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

package driven

import "net/url"

// Extraction is the readable text pulled out of a fetched document
type Extraction struct {
	Title    string
	Text     string
	SiteName string
}

// TextExtractor turns a raw response body into readable text.
// The fetcher picks one per response based on its Content-Type.
type TextExtractor interface {
	// Extract parses body. pageURL is used to resolve relative links.
	Extract(body []byte, pageURL *url.URL) (*Extraction, error)

	// SupportedTypes returns MIME types this extractor handles.
	// Wildcards like "text/*" and "*/*" are allowed.
	SupportedTypes() []string

	// Priority returns the extractor priority (higher = more specific).
	//   50-100: Format-specific (HTML, Markdown)
	//   1-9:    Fallback (raw text)
	Priority() int
}

// ExtractorRegistry selects a TextExtractor for a MIME type
type ExtractorRegistry interface {
	// Get returns the highest priority extractor for mimeType, or nil.
	Get(mimeType string) TextExtractor

	// Register adds an extractor.
	Register(extractor TextExtractor)

	// List returns all registered MIME types.
	List() []string
}

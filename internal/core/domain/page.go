package domain

import "time"

const (
	// IndexedURLsSet is the membership set recording URLs already handed to the indexer
	IndexedURLsSet = "indexed-urls"

	// HistoryAmount is how many prior messages are seeded into the chat widget
	HistoryAmount = 10
)

// ContentType identifies how the indexer should ingest a content source
type ContentType string

const (
	ContentTypeHTML ContentType = "html"
	ContentTypeText ContentType = "text"
)

// ContentSource describes something to ingest into the retrieval context
type ContentSource struct {
	Type   ContentType `json:"type"`
	Source string      `json:"source"` // URL for html, raw text for text
}

// HTMLSource returns the content descriptor used for lazy page indexing
func HTMLSource(url string) ContentSource {
	return ContentSource{Type: ContentTypeHTML, Source: url}
}

// MessageRole identifies who authored a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat history entry. The page treats it as opaque and
// passes it to the renderer unmodified.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// IndexOutcome records what lazy indexing did for one page view
type IndexOutcome string

const (
	IndexOutcomeAlreadyIndexed IndexOutcome = "already_indexed"
	IndexOutcomeIndexed        IndexOutcome = "indexed"
	IndexOutcomeInProgress     IndexOutcome = "in_progress"
	IndexOutcomeFailed         IndexOutcome = "failed"
)

// PageView is everything the chat widget needs to render
type PageView struct {
	URL             string       `json:"url"`
	SessionID       string       `json:"sessionId"`
	InitialMessages []Message    `json:"initialMessages,omitempty"`
	IndexOutcome    IndexOutcome `json:"indexOutcome"`
}

// Indexed returns true if the URL is known to be in the retrieval context
func (v *PageView) Indexed() bool {
	return v.IndexOutcome == IndexOutcomeAlreadyIndexed || v.IndexOutcome == IndexOutcomeIndexed
}

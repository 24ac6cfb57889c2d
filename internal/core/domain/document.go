package domain

import "time"

// FetchedPage is the readable content extracted from a remote HTML page
type FetchedPage struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	SiteName  string    `json:"site_name,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Chunk represents a retrievable slice of an ingested source
type Chunk struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"` // URL or text descriptor the chunk came from
	Content   string            `json:"content"`
	Position  int               `json:"position"` // Chunk position within the source
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

package ai

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Embedding providers
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

const defaultOllamaBaseURL = "http://localhost:11434/v1"

// EmbeddingConfig selects and configures an embedding provider
type EmbeddingConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// IsConfigured reports whether enough settings are present to build a service
func (c EmbeddingConfig) IsConfigured() bool {
	switch strings.ToLower(c.Provider) {
	case ProviderOllama:
		return true
	case "", ProviderOpenAI:
		return c.APIKey != "" || c.BaseURL != ""
	default:
		return false
	}
}

// NewEmbeddingService builds the configured embedding service.
// Returns nil, nil when embeddings are not configured.
func NewEmbeddingService(cfg EmbeddingConfig) (driven.EmbeddingService, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		if !cfg.IsConfigured() {
			return nil, nil
		}
		return newService(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderOllama:
		// Ollama serves the OpenAI embeddings API under /v1
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		return newService(cfg.APIKey, model, baseURL)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func newService(apiKey, model, baseURL string) (driven.EmbeddingService, error) {
	svc, err := NewOpenAIEmbedding(apiKey, model, baseURL)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

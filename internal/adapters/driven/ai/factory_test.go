package ai

import "testing"

func TestEmbeddingConfig_IsConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  EmbeddingConfig
		want bool
	}{
		{"empty", EmbeddingConfig{}, false},
		{"openai key", EmbeddingConfig{APIKey: "sk-test"}, true},
		{"compatible server", EmbeddingConfig{BaseURL: "http://embed.internal/v1"}, true},
		{"ollama", EmbeddingConfig{Provider: "ollama"}, true},
		{"unknown", EmbeddingConfig{Provider: "voyage", APIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEmbeddingService_NotConfigured(t *testing.T) {
	svc, err := NewEmbeddingService(EmbeddingConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc != nil {
		t.Error("expected nil service when not configured")
	}
}

func TestNewEmbeddingService_OpenAI(t *testing.T) {
	svc, err := NewEmbeddingService(EmbeddingConfig{Provider: "OpenAI", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected service")
	}
	if svc.Model() != "text-embedding-3-small" {
		t.Errorf("unexpected model %s", svc.Model())
	}
}

func TestNewEmbeddingService_Ollama(t *testing.T) {
	svc, err := NewEmbeddingService(EmbeddingConfig{Provider: ProviderOllama})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	emb := svc.(*OpenAIEmbedding)
	if emb.baseURL != defaultOllamaBaseURL {
		t.Errorf("expected ollama base URL, got %s", emb.baseURL)
	}
	if emb.Dimensions() != 768 {
		t.Errorf("expected 768 dimensions, got %d", emb.Dimensions())
	}
}

func TestNewEmbeddingService_UnknownProvider(t *testing.T) {
	if _, err := NewEmbeddingService(EmbeddingConfig{Provider: "cohere"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

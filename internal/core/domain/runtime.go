package domain

import "sync"

// Backend names reported at startup and by the readiness endpoint
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// RuntimeConfig tracks which backends the running process is wired to.
// Store backends are fixed at startup; embedding availability can change if
// the embedding service fails its health check.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	MembershipBackend string // "redis" or "postgres"
	HistoryBackend    string // "redis" or "memory"
	SessionPolicy     SessionPolicy

	// Dynamic capability flags
	embeddingAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(membershipBackend, historyBackend string, policy SessionPolicy) *RuntimeConfig {
	return &RuntimeConfig{
		MembershipBackend: membershipBackend,
		HistoryBackend:    historyBackend,
		SessionPolicy:     policy,
	}
}

// EmbeddingAvailable returns whether the embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// Snapshot returns a JSON-friendly view of the runtime configuration
func (c *RuntimeConfig) Snapshot() map[string]any {
	return map[string]any{
		"membership_backend":  c.MembershipBackend,
		"history_backend":     c.HistoryBackend,
		"session_policy":      string(c.SessionPolicy),
		"embedding_available": c.EmbeddingAvailable(),
	}
}

package ragchat

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Ensure MemoryHistory implements HistoryStore
var _ driven.HistoryStore = (*MemoryHistory)(nil)

// MemoryHistory is an in-process HistoryStore used when no Redis is
// configured. History is lost on restart and not shared between instances.
type MemoryHistory struct {
	mu          sync.RWMutex
	sessions    map[string][]domain.Message
	maxMessages int
}

// NewMemoryHistory creates an in-memory history store.
// maxMessages caps each session's history; 0 keeps everything.
func NewMemoryHistory(maxMessages int) *MemoryHistory {
	return &MemoryHistory{
		sessions:    make(map[string][]domain.Message),
		maxMessages: maxMessages,
	}
}

func (h *MemoryHistory) GetMessages(_ context.Context, sessionID string, amount int) ([]domain.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msgs := h.sessions[sessionID]
	if amount <= 0 || len(msgs) == 0 {
		return []domain.Message{}, nil
	}
	if len(msgs) > amount {
		msgs = msgs[len(msgs)-amount:]
	}

	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (h *MemoryHistory) AddMessage(_ context.Context, sessionID string, msg domain.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	msgs := append(h.sessions[sessionID], msg)
	if h.maxMessages > 0 && len(msgs) > h.maxMessages {
		msgs = append([]domain.Message(nil), msgs[len(msgs)-h.maxMessages:]...)
	}
	h.sessions[sessionID] = msgs
	return nil
}

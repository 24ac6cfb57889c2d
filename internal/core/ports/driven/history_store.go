package driven

import (
	"context"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// HistoryStore holds chat conversation history owned by the chat service
type HistoryStore interface {
	// GetMessages returns up to amount of the most recent messages for a session,
	// oldest first. Returns an empty slice for an unknown session.
	GetMessages(ctx context.Context, sessionID string, amount int) ([]domain.Message, error)

	// AddMessage appends a message to a session's history.
	// Written by the chat service only; page rendering never calls it.
	AddMessage(ctx context.Context, sessionID string, msg domain.Message) error
}

package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore implements driven.HistoryStore on the chat_messages table
type HistoryStore struct {
	db *DB
}

// NewHistoryStore creates a new HistoryStore
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// GetMessages returns the last amount messages for a session, oldest first
func (s *HistoryStore) GetMessages(ctx context.Context, sessionID string, amount int) ([]domain.Message, error) {
	if amount <= 0 {
		return []domain.Message{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY seq DESC
		LIMIT $2
	`, sessionID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0, amount)
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}

// AddMessage appends a message to a session's history
func (s *HistoryStore) AddMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (session_id, message_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sessionID, msg.ID, string(msg.Role), msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

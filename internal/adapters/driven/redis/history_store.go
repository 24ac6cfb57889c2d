package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.HistoryStore = (*HistoryStore)(nil)

const historyPrefix = "ragchat:history:"

// HistoryStore implements driven.HistoryStore using one Redis list per session.
// Messages are JSON encoded and appended with RPUSH, so the list is ordered
// oldest to newest.
type HistoryStore struct {
	client      redis.UniversalClient
	maxMessages int64
	ttl         time.Duration
}

// HistoryStoreConfig holds retention settings for the history store
type HistoryStoreConfig struct {
	MaxMessages int           // Messages kept per session, 0 keeps everything
	TTL         time.Duration // Idle expiry per session, 0 never expires
}

// NewHistoryStore creates a new Redis-backed HistoryStore
func NewHistoryStore(client redis.UniversalClient, cfg HistoryStoreConfig) *HistoryStore {
	return &HistoryStore{
		client:      client,
		maxMessages: int64(cfg.MaxMessages),
		ttl:         cfg.TTL,
	}
}

// GetMessages returns the last amount messages for a session, oldest first
func (s *HistoryStore) GetMessages(ctx context.Context, sessionID string, amount int) ([]domain.Message, error) {
	if amount <= 0 {
		return []domain.Message{}, nil
	}

	raw, err := s.client.LRange(ctx, historyPrefix+sessionID, -int64(amount), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// AddMessage appends a message and applies the retention settings
func (s *HistoryStore) AddMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := historyPrefix + sessionID
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

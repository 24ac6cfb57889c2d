package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MembershipStore = (*MembershipStore)(nil)

// MembershipStore implements driven.MembershipStore on Redis sets.
// With an empty prefix the set name is used as the key verbatim, so the
// ledger is shared with any other client reading "indexed-urls".
type MembershipStore struct {
	client redis.UniversalClient
	prefix string
}

// NewMembershipStore creates a new Redis-backed MembershipStore
func NewMembershipStore(client redis.UniversalClient, keyPrefix string) *MembershipStore {
	return &MembershipStore{client: client, prefix: keyPrefix}
}

// IsMember runs SISMEMBER on the set
func (s *MembershipStore) IsMember(ctx context.Context, set, member string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.prefix+set, member).Result()
	if err != nil {
		return false, fmt.Errorf("sismember %s: %w", set, err)
	}
	return ok, nil
}

// Add runs SADD on the set
func (s *MembershipStore) Add(ctx context.Context, set, member string) error {
	if err := s.client.SAdd(ctx, s.prefix+set, member).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", set, err)
	}
	return nil
}

// Ping checks if the Redis backend is healthy
func (s *MembershipStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MembershipStore = (*MembershipStore)(nil)

// MembershipStore implements driven.MembershipStore on the set_members table
type MembershipStore struct {
	db *DB
}

// NewMembershipStore creates a new MembershipStore
func NewMembershipStore(db *DB) *MembershipStore {
	return &MembershipStore{db: db}
}

// IsMember reports whether member is in the named set
func (s *MembershipStore) IsMember(ctx context.Context, set, member string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM set_members WHERE set_name = $1 AND member = $2)`,
		set, member,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// Add inserts member into the named set; existing members are left alone
func (s *MembershipStore) Add(ctx context.Context, set, member string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO set_members (set_name, member) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		set, member,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// Ping checks if the database is reachable
func (s *MembershipStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

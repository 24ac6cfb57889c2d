package driven

import "context"

// MembershipStore is a set-membership ledger keyed by set name.
// It backs the "already indexed" de-duplication guard; it does not provide
// check-and-set, so callers that need exclusivity pair it with a DistributedLock.
type MembershipStore interface {
	// IsMember reports whether member is in the named set (SISMEMBER)
	IsMember(ctx context.Context, set, member string) (bool, error)

	// Add inserts member into the named set (SADD). Adding an existing member is a no-op.
	Add(ctx context.Context, set, member string) error

	// Ping checks if the store backend is healthy
	Ping(ctx context.Context) error
}

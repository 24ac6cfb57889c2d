package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock using PostgreSQL advisory locks.
//
// Advisory locks belong to a database session, so every held lock pins one
// pooled connection until it is released. The TTL is enforced locally: a
// lock not released within its TTL is released by a timer. If the process
// dies the connection closes and PostgreSQL drops the lock.
type AdvisoryLock struct {
	db *DB

	mu   sync.Mutex
	held map[string]*heldLock
}

type heldLock struct {
	conn  *sql.Conn
	timer *time.Timer
}

// NewAdvisoryLock creates a new PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{db: db, held: make(map[string]*heldLock)}
}

// hashLockName maps a lock name to the 64-bit key advisory locks take.
func hashLockName(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte("pagechat:lock:" + name))
	return int64(h.Sum64())
}

// Acquire tries to take the lock without blocking.
func (l *AdvisoryLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	if _, ok := l.held[name]; ok {
		l.mu.Unlock()
		return false, nil
	}
	l.mu.Unlock()

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", hashLockName(name)).Scan(&acquired); err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		conn.Close()
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	h := &heldLock{conn: conn}
	if ttl > 0 {
		h.timer = time.AfterFunc(ttl, func() {
			_ = l.Release(context.Background(), name)
		})
	}
	l.held[name] = h
	return true, nil
}

// Release releases the lock. Safe to call when the lock is not held.
func (l *AdvisoryLock) Release(ctx context.Context, name string) error {
	l.mu.Lock()
	h, ok := l.held[name]
	delete(l.held, name)
	l.mu.Unlock()

	if !ok {
		return nil
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	return l.unlock(h.conn, name)
}

// unlock releases the advisory lock on conn and returns conn to the pool.
func (l *AdvisoryLock) unlock(conn *sql.Conn, name string) error {
	defer conn.Close()

	var released bool
	err := conn.QueryRowContext(context.Background(), "SELECT pg_advisory_unlock($1)", hashLockName(name)).Scan(&released)
	if err != nil {
		// Closing would return a connection still holding the lock to the pool
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Extend resets the local TTL of a held lock.
func (l *AdvisoryLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.held[name]
	if !ok {
		return fmt.Errorf("lock not held: %s", name)
	}
	switch {
	case h.timer != nil:
		h.timer.Reset(ttl)
	case ttl > 0:
		h.timer = time.AfterFunc(ttl, func() {
			_ = l.Release(context.Background(), name)
		})
	}
	return nil
}

// Ping checks if the PostgreSQL backend is healthy.
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

package shared

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned by Locker.TryLock when another holder owns the key
var ErrLockHeld = errors.New("lock is held by another holder")

// Locker grants short-lived exclusive leases on named resources.
// Implementations must not block waiting for a held key.
type Locker interface {
	// TryLock acquires key for at most ttl, after which the lease expires
	// on its own even if Release is never called.
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, error)

	// Close releases resources held by the locker
	Close() error
}

// Lease is an acquired lock
type Lease interface {
	// Release gives up the lease. Releasing an expired or already released
	// lease is a no-op.
	Release(ctx context.Context) error
}

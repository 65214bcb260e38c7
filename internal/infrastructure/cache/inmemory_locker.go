package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopkeeper/backend/internal/domain/shared"
)

type heldLock struct {
	token     uint64
	expiresAt time.Time
}

// InMemoryLocker implements shared.Locker with a keyed map guarded by one mutex.
// Leases only exclude callers within this process.
type InMemoryLocker struct {
	mu     sync.Mutex
	held   map[string]heldLock
	nextID uint64
	now    func() time.Time
}

// NewInMemoryLocker creates an empty locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		held: make(map[string]heldLock),
		now:  time.Now,
	}
}

// TryLock acquires key unless a live lease exists. Expired leases are
// replaced on the spot, so no background cleanup is needed.
func (l *InMemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (shared.Lease, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive, got %s", ttl)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return nil, shared.ErrLockHeld
	}

	l.nextID++
	l.held[key] = heldLock{token: l.nextID, expiresAt: now.Add(ttl)}
	return &memoryLease{locker: l, key: key, token: l.nextID}, nil
}

// Close is a no-op
func (l *InMemoryLocker) Close() error {
	return nil
}

// Size returns the number of tracked keys, expired ones included
func (l *InMemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

type memoryLease struct {
	locker *InMemoryLocker
	key    string
	token  uint64
}

func (m *memoryLease) Release(_ context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()

	if h, ok := m.locker.held[m.key]; ok && h.token == m.token {
		delete(m.locker.held, m.key)
	}
	return nil
}

var _ shared.Locker = (*InMemoryLocker)(nil)

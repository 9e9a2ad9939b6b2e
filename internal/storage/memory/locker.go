package memory

import (
	"context"
	"sync"
	"time"

	"roulette-lab/internal/storage"
)

// Locker is an in-process implementation of storage.Locker with expiring keys.
type Locker struct {
	mu    sync.Mutex
	held  map[string]time.Time // key -> expiry
	clock func() time.Time
}

// NewLocker creates a new in-memory locker.
func NewLocker() *Locker {
	return &Locker{
		held:  make(map[string]time.Time),
		clock: time.Now,
	}
}

// TryLock acquires key for ttl. Expired holds are taken over.
func (l *Locker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" || ttl <= 0 {
		return false, storage.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expiry, ok := l.held[key]; ok && now.Before(expiry) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

// Unlock releases key.
func (l *Locker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
	return nil
}

var _ storage.Locker = (*Locker)(nil)

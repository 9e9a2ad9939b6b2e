package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"roulette-lab/internal/storage"
)

// unlockScript deletes the lock only while it still holds the caller's token.
// KEYS[1] = lock key, ARGV[1] = token.
var unlockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Locker implements storage.Locker with SET NX PX and an owner token per held key.
// A lock that expired and was taken by another holder is never released by Unlock.
type Locker struct {
	client *Client

	mu     sync.Mutex
	tokens map[string]string // key -> token of the lock this Locker holds
}

// NewLocker creates a new Locker.
func NewLocker(client *Client) *Locker {
	return &Locker{client: client, tokens: make(map[string]string)}
}

// Compile-time interface check.
var _ storage.Locker = (*Locker)(nil)

// TryLock acquires key for ttl.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" || ttl <= 0 {
		return false, storage.ErrInvalidInput
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.client.wrapKey("lock", key), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("try lock %s: %w", key, err)
	}
	if ok {
		l.mu.Lock()
		l.tokens[key] = token
		l.mu.Unlock()
	}
	return ok, nil
}

// Unlock releases key if this Locker still owns it.
func (l *Locker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}

	if err := unlockScript.Run(ctx, l.client, []string{l.client.wrapKey("lock", key)}, token).Err(); err != nil {
		return fmt.Errorf("unlock %s: %w", key, err)
	}
	return nil
}

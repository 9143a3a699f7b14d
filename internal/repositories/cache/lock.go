package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned by TryAcquire when another holder owns the key.
var ErrLockHeld = errors.New("lock held by another instance")

// Deletes the key only if it still carries our token, so an expired lock
// taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Releaser gives a held lock back.
type Releaser interface {
	Release(ctx context.Context) error
}

// Locker hands out short-lived mutual exclusion across service instances.
type Locker struct {
	client redis.UniversalClient
}

func NewLocker(client redis.UniversalClient) *Locker {
	return &Locker{client: client}
}

// Lock is a held lock. Release is safe to call more than once.
type Lock struct {
	key    string
	token  string
	client redis.UniversalClient
}

// TryAcquire takes key for ttl without waiting.
func (l *Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Releaser, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{key: key, token: token, client: l.client}, nil
}

func (k *Lock) Release(ctx context.Context) error {
	if k == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, k.client, []string{k.key}, k.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", k.key, err)
	}
	return nil
}

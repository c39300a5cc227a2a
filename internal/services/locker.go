package services

import (
	"context"
	"sync"
	"time"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/uuid"

	"github.com/redis/go-redis/v9"
)

// localLocker guards cycles within a single process.
type localLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker creates an in-process CycleLocker.
func NewLocalLocker() CycleLocker {
	return &localLocker{held: make(map[string]bool)}
}

// Acquire takes key or fails with ErrCycleInProgress. ttl is ignored: the
// lock lives until release.
func (l *localLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return nil, apperrors.ErrCycleInProgress
	}
	l.held[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

const redisLockPrefix = "stockwise:cycle:"

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisLocker guards cycles across every process sharing one Redis.
type redisLocker struct {
	client redis.UniversalClient
}

// NewRedisLocker creates a CycleLocker backed by Redis SET NX PX.
func NewRedisLocker(client redis.UniversalClient) CycleLocker {
	return &redisLocker{client: client}
}

// Acquire takes key for at most ttl. A crashed holder's lock expires on its
// own.
func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New()
	redisKey := redisLockPrefix + key

	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return nil, apperrors.ErrCycleInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The cycle context may already be cancelled.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err()
		})
	}, nil
}

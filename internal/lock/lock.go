// Package lock provides the board-scoped mutual-exclusion lock used to make
// multi-task batch operations appear atomic to concurrent callers.
//
// The lock is a standard Redis expiring lock: SET key token NX PX ttl to
// acquire, and a compare-and-delete Lua script to release so that only the
// holder can release it. Acquisition blocks with a polling retry loop up to
// a configurable timeout; this is the only place in the engine that blocks
// waiting on contention.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyluth/drey/pkg/kanban"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only if it still holds our token.
// Prevents releasing a lock that expired and was re-acquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker serializes critical sections on a named lock key.
type Locker interface {
	// WithLock acquires the named lock, runs fn, and releases the lock.
	// Returns kanban.ErrLockTimeout (wrapped) if the lock cannot be acquired
	// within the acquisition budget. Errors from fn are returned as-is.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// RedisLocker implements Locker on a Redis connection.
type RedisLocker struct {
	rdb            *redis.Client
	ttl            time.Duration // Lock auto-expiry, bounds damage from a crashed holder
	acquireTimeout time.Duration
	retryInterval  time.Duration
}

// Option configures a RedisLocker.
type Option func(*RedisLocker)

// WithTTL overrides how long an acquired lock lives before Redis expires it.
func WithTTL(ttl time.Duration) Option {
	return func(l *RedisLocker) { l.ttl = ttl }
}

// WithAcquireTimeout overrides how long acquisition may block before failing
// with kanban.ErrLockTimeout.
func WithAcquireTimeout(d time.Duration) Option {
	return func(l *RedisLocker) { l.acquireTimeout = d }
}

// WithRetryInterval overrides the polling interval between acquisition
// attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(l *RedisLocker) { l.retryInterval = d }
}

// NewRedisLocker creates a locker with sane defaults: 30s TTL, 5s acquisition
// timeout, 50ms retry interval.
func NewRedisLocker(rdb *redis.Client, opts ...Option) *RedisLocker {
	l := &RedisLocker{
		rdb:            rdb,
		ttl:            30 * time.Second,
		acquireTimeout: 5 * time.Second,
		retryInterval:  50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithLock implements Locker.
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.New().String()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		// Release is best-effort: if it fails the TTL still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err()
	}()

	return fn(ctx)
}

// acquire polls SET NX until it wins, the budget runs out, or the context is
// cancelled.
func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.acquireTimeout)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %q: %w", key, err)
		}
		if ok {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("lock %q held by another caller after %v: %w",
				key, l.acquireTimeout, kanban.ErrLockTimeout)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("lock %q: %w", key, kanban.ErrLockTimeout)
			}
			return ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when a session lock is still held when the context ends.
var ErrLockNotAcquired = errors.New("session lock not acquired")

const (
	sessionLockPrefix   = "session-lock:"
	DefaultLockTTL      = 2 * time.Minute
	defaultPollInterval = 50 * time.Millisecond
)

// Locker serializes turns on one session.
type Locker interface {
	// Lock blocks until the lock is held or ctx ends. The returned func releases it.
	Lock(ctx context.Context, id uuid.UUID) (func(), error)
}

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a Locker shared by every API process talking to the same Redis.
type RedisLocker struct {
	client       *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a locker. ttl bounds how long a crashed holder blocks the session.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{
		client:       client,
		ttl:          ttl,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	lockKey := sessionLockPrefix + id.String()
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("failed to acquire session lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
		case <-time.After(l.pollInterval):
		}
	}

	unlock := func() {
		// release on a fresh context so a cancelled turn still frees the session
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{lockKey}, token).Err(); err != nil {
			l.logger.Error("Failed to release session lock", "error", err, "session_id", id.String())
		}
	}
	return unlock, nil
}

// LocalLocker is an in-process Locker for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*localLock
}

type localLock struct {
	sem  chan struct{}
	refs int
}

var _ Locker = (*LocalLocker)(nil)

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[uuid.UUID]*localLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &localLock{sem: make(chan struct{}, 1)}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(id, lk)
		return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.sem
			l.release(id, lk)
		})
	}, nil
}

func (l *LocalLocker) release(id uuid.UUID, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
}

// held reports how many callers hold or wait for id. Used by tests.
func (l *LocalLocker) held(id uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lk, ok := l.locks[id]; ok {
		return lk.refs
	}
	return 0
}

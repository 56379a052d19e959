package redis

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockHeld is returned when another writer holds the trace lock.
	ErrLockHeld = errors.New("trace is locked by another writer")
	// ErrLockLost is returned when a lease expired and the key no longer carries its token.
	ErrLockLost = errors.New("trace lock lost")
)

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

const refreshScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

// Locker hands out exclusive writer locks with SET NX PX.
type Locker struct {
	client *backend.Client
	prefix string
	poll   time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		poll:   100 * time.Millisecond,
	}
}

func (l *Locker) key(name string) string {
	return l.prefix + "lock:" + name
}

// Lease is one acquired lock. Only the holder's token can extend or release it.
type Lease struct {
	client *backend.Client
	name   string
	key    string
	token  string
	ttl    time.Duration
}

// TTL returns the lease duration granted on every refresh.
func (l *Lease) TTL() time.Duration {
	return l.ttl
}

// Refresh extends the lease by its TTL. It returns ErrLockLost once the key expired
// or was taken over.
func (l *Lease) Refresh(ctx context.Context) error {
	n, err := l.client.Eval(ctx, refreshScript, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("redis error refreshing lock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLockLost, l.name)
	}
	return nil
}

// Release deletes the lock if it is still held. It returns ErrLockLost otherwise,
// leaving a newer holder untouched.
func (l *Lease) Release(ctx context.Context) error {
	n, err := l.client.Eval(ctx, unlockScript, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("redis error releasing lock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLockLost, l.name)
	}
	return nil
}

// TryLock makes a single attempt and returns ErrLockHeld if the lock is taken.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	lease := &Lease{
		client: l.client,
		name:   name,
		key:    l.key(name),
		token:  fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int64()),
		ttl:    ttl,
	}

	ok, err := l.client.SetNX(ctx, lease.key, lease.token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, name)
	}
	return lease, nil
}

// Lock polls until the lock is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		lease, err := l.TryLock(ctx, name, ttl)
		if err == nil {
			return lease, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", err, ctx.Err())
		case <-ticker.C:
		}
	}
}

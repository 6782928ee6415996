package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist or has expired.
var ErrNotFound = errors.New("store: key not found")

// Store is the shared key-value substrate behind the rate limiter, the
// result cache and the job tracker. No process holds authoritative state:
// every cross-instance coordination step goes through one of these
// operations, and each operation is atomic with respect to concurrent
// callers on the same key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)

	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX writes the value only if the key does not already exist.
	// Returns true when the write happened.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// CompareAndSwap replaces the value only if it currently equals old,
	// preserving the key's remaining TTL. Returns false when the current
	// value differs or the key has expired.
	CompareAndSwap(ctx context.Context, key string, old, new []byte) (bool, error)

	Delete(ctx context.Context, key string) error

	// IncrWithTTL atomically increments the counter at key, applying ttl
	// only when the increment creates the key. The increment and the
	// expiry are a single atomic step.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// TTL reports the remaining time to live of key. Returns 0 when the
	// key is missing or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Close() error
}

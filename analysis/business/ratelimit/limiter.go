package ratelimit

import (
	"context"
	"time"

	"encore.dev/rlog"

	"encore.app/analysis/store"
)

const keyPrefix = "rate_limit:"

// SharedIdentity is the bucket used when a request carries no usable client
// identity (some proxies strip the identifying headers). All anonymous
// traffic then shares one window — a documented degraded mode, not a failure.
const SharedIdentity = "global"

const (
	DefaultMaxRequests = 5
	DefaultInterval    = 60 * time.Second
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter admits or denies requests per client identity using a fixed-window
// counter in the shared store. The window expiry lives in the store, so the
// limit holds across front-end instances regardless of their clock skew.
type Limiter struct {
	store    store.Store
	max      int64
	interval time.Duration
}

func NewLimiter(s store.Store, maxRequests int64, interval time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		store:    s,
		max:      maxRequests,
		interval: interval,
	}
}

// Check consumes one slot of identity's active window. The increment is a
// single atomic store operation, so concurrent callers sharing an identity
// cannot race the limit past its maximum. On a deny, the retry hint is the
// window's remaining TTL as reported by the store, not a locally computed
// value. Store failures fail open: rate limiting protects capacity, it is
// not a correctness mechanism.
func (l *Limiter) Check(ctx context.Context, identity string) Decision {
	if identity == "" {
		identity = SharedIdentity
	}
	key := keyPrefix + identity

	count, err := l.store.IncrWithTTL(ctx, key, l.interval)
	if err != nil {
		rlog.Error("rate limit store unavailable, failing open", "identity", identity, "error", err)
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max}
	}

	if count <= l.max {
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max - count}
	}

	retryAfter, err := l.store.TTL(ctx, key)
	if err != nil || retryAfter <= 0 {
		retryAfter = l.interval
	}
	return Decision{Allowed: false, Limit: l.max, RetryAfter: retryAfter}
}

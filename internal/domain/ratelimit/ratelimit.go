// Package ratelimit enforces a per-user cooldown between allocation requests.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter throttles repeated requests from the same user.
type Limiter interface {
	// Allow atomically checks whether userID may proceed now and, if so,
	// records the attempt. When the user is still cooling down it returns
	// false together with the time left until the next allowed attempt.
	Allow(ctx context.Context, userID string) (bool, time.Duration)

	// Forget drops the cooldown state for userID, allowing an immediate
	// retry. Used when the user's data is reset.
	Forget(ctx context.Context, userID string)

	Size() int64
}

// inMemoryLimiter implements Limiter with a map of last-attempt timestamps.
// For bounded mode (maxEntries > 0) it evicts expired entries opportunistically
// and, when still full, the entry closest to expiry.
type inMemoryLimiter struct {
	mu         sync.Mutex
	last       map[string]time.Time // userID -> last accepted attempt
	cooldown   time.Duration
	maxEntries int          // 0 or negative = unbounded
	size       atomic.Int64 // current number of entries
	now        func() time.Time
}

// NewInMemoryLimiter creates a new in-memory limiter with configuration options.
func NewInMemoryLimiter(opts ...Option) Limiter {
	l := &inMemoryLimiter{
		cooldown:   30 * time.Second, // default cooldown
		maxEntries: 50000,            // default max entries
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.last = make(map[string]time.Time)

	return l
}

// Allow atomically checks whether userID may proceed now and records the
// attempt if so.
func (l *inMemoryLimiter) Allow(ctx context.Context, userID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if at, exists := l.last[userID]; exists {
		if elapsed := now.Sub(at); elapsed < l.cooldown {
			return false, l.cooldown - elapsed
		}
		// Cooldown elapsed, treat as a fresh attempt.
		l.last[userID] = now
		return true, 0
	}

	if l.maxEntries > 0 && len(l.last) >= l.maxEntries {
		l.evict(now)
	}

	l.last[userID] = now
	l.size.Store(int64(len(l.last)))
	return true, 0
}

// Forget drops the cooldown state for userID.
func (l *inMemoryLimiter) Forget(ctx context.Context, userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.last[userID]; exists {
		delete(l.last, userID)
		l.size.Store(int64(len(l.last)))
	}
}

// evict removes expired entries; if none have expired yet it removes the
// single entry closest to expiry. Must be called with l.mu held.
func (l *inMemoryLimiter) evict(now time.Time) {
	var (
		oldestID string
		oldestAt time.Time
		dropped  bool
	)
	for id, at := range l.last {
		if now.Sub(at) >= l.cooldown {
			delete(l.last, id)
			dropped = true
			continue
		}
		if oldestID == "" || at.Before(oldestAt) {
			oldestID, oldestAt = id, at
		}
	}
	if !dropped && oldestID != "" {
		delete(l.last, oldestID)
	}
	l.size.Store(int64(len(l.last)))
}

// Size returns the current number of tracked users.
func (l *inMemoryLimiter) Size() int64 {
	return l.size.Load()
}

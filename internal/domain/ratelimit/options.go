package ratelimit

import "time"

// Option applies a configuration option to the InMemoryLimiter.
type Option func(*inMemoryLimiter)

// WithCooldown sets the minimum interval between accepted requests from
// the same user. Non-positive values are ignored.
func WithCooldown(d time.Duration) Option {
	return func(l *inMemoryLimiter) {
		if d > 0 {
			l.cooldown = d
		}
	}
}

// WithMaxEntries sets the maximum number of users to track.
// If maxEntries > 0: bounded mode with expiry-based eviction.
// If maxEntries <= 0: unbounded mode.
func WithMaxEntries(maxEntries int) Option {
	return func(l *inMemoryLimiter) {
		l.maxEntries = maxEntries
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *inMemoryLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// Package cache holds recently used season submissions in memory.
//
// The cache is demand driven: a season is only refreshed while someone is
// actually reading it. Reads mark the season active; the background sweep
// re-enqueues refreshes for active seasons and lets idle ones age out.
package cache

import (
	"sync"
	"time"

	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/pkg/metrics"
)

// SeasonCache caches per-season submission lists with activity tracking.
type SeasonCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	submissions []model.Submission
	refreshedAt time.Time
	lastReadAt  time.Time
}

// SeasonStatus describes one cached season for the stats endpoint.
type SeasonStatus struct {
	Season      string `json:"season"`
	Submissions int    `json:"submissions"`
	AgeSeconds  int64  `json:"ageSeconds"`
	IdleSeconds int64  `json:"idleSeconds"`
	Stale       bool   `json:"stale"`
}

// Option applies a configuration option to the SeasonCache.
type Option func(*SeasonCache)

// WithTTL sets how long a cached season stays fresh and how long it may
// sit unread before it is evicted.
func WithTTL(ttl time.Duration) Option {
	return func(c *SeasonCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *SeasonCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a season cache with configuration options.
func New(opts ...Option) *SeasonCache {
	c := &SeasonCache{
		entries: make(map[string]*entry),
		ttl:     15 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached submissions for a season and whether they exist.
// A hit marks the season active.
func (c *SeasonCache) Get(season string) ([]model.Submission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[season]
	if !ok {
		metrics.IncrementSeasonCacheMisses()
		return nil, false
	}
	e.lastReadAt = c.now()
	// An entry created by MarkActive alone holds no data yet; readers must
	// fall through to the store until a refresh populates it.
	if e.refreshedAt.IsZero() {
		metrics.IncrementSeasonCacheMisses()
		return nil, false
	}
	metrics.IncrementSeasonCacheHits()
	return e.submissions, true
}

// Set stores freshly fetched submissions for a season.
func (c *SeasonCache) Set(season string, submissions []model.Submission) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[season]; ok {
		e.submissions = submissions
		e.refreshedAt = now
		return
	}
	c.entries[season] = &entry{
		submissions: submissions,
		refreshedAt: now,
		lastReadAt:  now,
	}
}

// MarkActive records interest in a season without reading it, so the next
// sweep refreshes it even before the first cached read.
func (c *SeasonCache) MarkActive(season string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[season]; ok {
		e.lastReadAt = c.now()
		return
	}
	c.entries[season] = &entry{lastReadAt: c.now()}
}

// Invalidate drops a season from the cache.
func (c *SeasonCache) Invalidate(season string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, season)
}

// StaleActiveSeasons returns the seasons that are still being read but
// whose data has outlived the TTL, and evicts the ones nobody reads
// anymore. The sweep job feeds its refresh queue from this.
func (c *SeasonCache) StaleActiveSeasons() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var stale []string
	for season, e := range c.entries {
		if now.Sub(e.lastReadAt) >= c.ttl {
			delete(c.entries, season)
			continue
		}
		if now.Sub(e.refreshedAt) >= c.ttl {
			stale = append(stale, season)
		}
	}
	metrics.UpdateSeasonCacheSize(len(c.entries))
	return stale
}

// Status reports the state of every cached season, for diagnostics.
func (c *SeasonCache) Status() []SeasonStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	out := make([]SeasonStatus, 0, len(c.entries))
	for season, e := range c.entries {
		out = append(out, SeasonStatus{
			Season:      season,
			Submissions: len(e.submissions),
			AgeSeconds:  int64(now.Sub(e.refreshedAt) / time.Second),
			IdleSeconds: int64(now.Sub(e.lastReadAt) / time.Second),
			Stale:       now.Sub(e.refreshedAt) >= c.ttl,
		})
	}
	return out
}

// Size returns the number of cached seasons.
func (c *SeasonCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

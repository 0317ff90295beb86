// Package catalog loads the per-season item catalog.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/pkg/metrics"
)

// Cached wraps a Source with a per-season TTL cache. Catalogs change
// rarely, so a hit avoids the disk or network round trip entirely.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedEntry
}

type cachedEntry struct {
	items     []model.Item
	fetchedAt time.Time
}

// CachedOption applies a configuration option to the Cached source.
type CachedOption func(*Cached)

// WithTTL sets how long a fetched catalog stays fresh.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCachedClock overrides the time source. Intended for tests.
func WithCachedClock(now func() time.Time) CachedOption {
	return func(c *Cached) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCached wraps src with a TTL cache.
func NewCached(src Source, opts ...CachedOption) *Cached {
	c := &Cached{
		src:     src,
		ttl:     time.Hour, // catalogs are near-static
		now:     time.Now,
		entries: make(map[string]cachedEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Items implements Source, serving from cache while the entry is fresh.
func (c *Cached) Items(ctx context.Context, season string) ([]model.Item, error) {
	c.mu.RLock()
	entry, ok := c.entries[season]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		metrics.IncrementCatalogCacheHits()
		return entry.items, nil
	}

	metrics.IncrementCatalogCacheMisses()
	items, err := c.src.Items(ctx, season)
	if err != nil {
		// A stale entry beats an error while the backend is unavailable.
		if ok {
			return entry.items, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[season] = cachedEntry{items: items, fetchedAt: c.now()}
	c.mu.Unlock()
	return items, nil
}

// Invalidate drops the cached catalog for a season.
func (c *Cached) Invalidate(season string) {
	c.mu.Lock()
	delete(c.entries, season)
	c.mu.Unlock()
}

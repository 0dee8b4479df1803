package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticker-bot/internal/logger"
	"ticker-bot/internal/types"
)

// ErrEmptyKey is returned by Put for a blank symbol.
var ErrEmptyKey = errors.New("cache: empty key")

// Store is a durable key/value medium for cache records. Implementations
// must make Save atomic for a single key: a concurrent Load sees either the
// previous record or the new one, never a mix.
type Store interface {
	Load(ctx context.Context, key string) (types.CacheRecord, bool, error)
	Save(ctx context.Context, rec types.CacheRecord) error
	Delete(ctx context.Context, key string) error
	// Prune removes records written before cutoff and reports how many went.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
	List(ctx context.Context) ([]types.CacheRecord, error)
	Close() error
}

// ResolutionCache is a TTL view over a Store keyed by normalized symbol.
type ResolutionCache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a ResolutionCache
type Option func(*ResolutionCache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *ResolutionCache) {
		c.now = now
	}
}

// New wraps store with a fixed freshness window.
func New(store Store, ttl time.Duration, opts ...Option) *ResolutionCache {
	c := &ResolutionCache{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window.
func (c *ResolutionCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached name for key if a fresh record exists. Stale
// records are reported as misses and left in place.
func (c *ResolutionCache) Get(ctx context.Context, key string) (string, bool) {
	key = types.NormalizeSymbol(key)
	if key == "" {
		return "", false
	}

	rec, ok, err := c.store.Load(ctx, key)
	if err != nil {
		logger.Warn(ctx, "Cache read failed, treating as miss", "symbol", key, "error", err)
		return "", false
	}
	if !ok || rec.Stale(c.now(), c.ttl) {
		return "", false
	}
	return rec.Value, true
}

// Put stores value for key stamped with the current time. The failure
// sentinel is never stored. A persistence error is logged and returned for
// reporting; the cache simply keeps missing for that key.
func (c *ResolutionCache) Put(ctx context.Context, key, value string) error {
	if value == types.NotAvailable {
		return nil
	}
	key = types.NormalizeSymbol(key)
	if key == "" {
		return ErrEmptyKey
	}

	rec := types.CacheRecord{Key: key, Value: value, WrittenAt: c.now()}
	if err := c.store.Save(ctx, rec); err != nil {
		logger.Warn(ctx, "Cache write failed", "symbol", key, "error", err)
		return fmt.Errorf("caching %s: %w", key, err)
	}
	return nil
}

// Stats summarizes the records held by the store.
type Stats struct {
	Total int `json:"total"`
	Live  int `json:"live"`
	Stale int `json:"stale"`
}

// Stats counts live and stale records.
func (c *ResolutionCache) Stats(ctx context.Context) (Stats, error) {
	recs, err := c.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := c.now()
	s := Stats{Total: len(recs)}
	for _, r := range recs {
		if r.Stale(now, c.ttl) {
			s.Stale++
		} else {
			s.Live++
		}
	}
	return s, nil
}

// Prune physically removes stale records. Reads never do this on their own.
func (c *ResolutionCache) Prune(ctx context.Context) (int, error) {
	return c.store.Prune(ctx, c.now().Add(-c.ttl))
}

// Close releases the backing store.
func (c *ResolutionCache) Close() error {
	return c.store.Close()
}

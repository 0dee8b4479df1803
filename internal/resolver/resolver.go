package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/types"
)

// ErrTransport marks failures to reach the name-lookup provider.
var ErrTransport = errors.New("name lookup transport failure")

// LookupError carries a provider failure for one symbol. It matches
// ErrTransport with errors.Is and unwraps to the provider error.
type LookupError struct {
	Symbol string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("looking up %s: %v", e.Symbol, e.Err)
}

func (e *LookupError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// Cache is the slice of the resolution cache the resolver needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, value string) error
}

// NameResolver answers symbol to name queries from the cache, falling back
// to the lookup provider on a miss or a forced refresh.
type NameResolver struct {
	cache  Cache
	lookup interfaces.NameLookup
}

var _ interfaces.Resolver = (*NameResolver)(nil)

func New(cache Cache, lookup interfaces.NameLookup) *NameResolver {
	return &NameResolver{cache: cache, lookup: lookup}
}

// Resolve returns the display name for symbol. The name is types.NotAvailable
// when the provider does not know the symbol; that result is never cached.
// A forced refresh skips the cache read and always overwrites the entry.
func (r *NameResolver) Resolve(ctx context.Context, symbol string, forceRefresh bool) (types.Resolution, error) {
	symbol = types.NormalizeSymbol(symbol)
	res := types.Resolution{Symbol: symbol}

	if !forceRefresh {
		if name, ok := r.cache.Get(ctx, symbol); ok {
			res.Name = name
			res.Cached = true
			return res, nil
		}
	}

	name, err := r.lookup.Lookup(ctx, symbol)
	if err != nil {
		return res, &LookupError{Symbol: symbol, Err: err}
	}
	if name == "" {
		name = types.NotAvailable
	}
	res.Name = name

	if name != types.NotAvailable {
		if err := r.cache.Put(ctx, symbol, name); err != nil {
			// Fail open: the name is still good, only the next call pays for a lookup.
			logger.Warn(ctx, "Resolved name not cached", "symbol", symbol, "error", err)
		}
	}
	return res, nil
}

// Result is the outcome of one symbol in ResolveMany.
type Result struct {
	types.Resolution
	Err error
}

// ResolveMany resolves symbols concurrently and returns results in input order.
func ResolveMany(ctx context.Context, r interfaces.Resolver, symbols []string, forceRefresh bool) []Result {
	results := make([]Result, len(symbols))

	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			res, err := r.Resolve(ctx, sym, forceRefresh)
			results[i] = Result{Resolution: res, Err: err}
		}(i, sym)
	}
	wg.Wait()

	return results
}

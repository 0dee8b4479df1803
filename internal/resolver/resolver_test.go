package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ticker-bot/internal/cache"
	"ticker-bot/internal/types"
)

// fakeLookup counts calls and answers from a fixed table.
type fakeLookup struct {
	mu    sync.Mutex
	names map[string]string
	err   error
	calls map[string]int
}

func newFakeLookup(names map[string]string) *fakeLookup {
	return &fakeLookup{names: names, calls: map[string]int{}}
}

func (f *fakeLookup) Lookup(_ context.Context, symbol string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	if f.err != nil {
		return "", f.err
	}
	if name, ok := f.names[symbol]; ok {
		return name, nil
	}
	return types.NotAvailable, nil
}

func (f *fakeLookup) Calls(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func TestResolveCachesAndHits(t *testing.T) {
	ctx := context.Background()
	c := cache.New(cache.NewMemoryStore(), time.Hour)
	lookup := newFakeLookup(map[string]string{"AAPL": "Apple Inc."})
	r := New(c, lookup)

	res, err := r.Resolve(ctx, "aapl", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbol != "AAPL" || res.Name != "Apple Inc." || res.Cached {
		t.Errorf("Unexpected first resolution: %+v", res)
	}

	res, err = r.Resolve(ctx, "AAPL", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Cached || res.Name != "Apple Inc." {
		t.Errorf("Expected cached resolution, got %+v", res)
	}
	if n := lookup.Calls("AAPL"); n != 1 {
		t.Errorf("Expected 1 lookup call, got %d", n)
	}
}

func TestForceRefreshBypassesFreshEntry(t *testing.T) {
	ctx := context.Background()
	c := cache.New(cache.NewMemoryStore(), time.Hour)
	c.Put(ctx, "FB", "Facebook Inc.")
	lookup := newFakeLookup(map[string]string{"FB": "Meta Platforms"})
	r := New(c, lookup)

	if got, ok := c.Get(ctx, "FB"); !ok || got != "Facebook Inc." {
		t.Fatalf("Expected fresh cache entry before refresh, got %q %v", got, ok)
	}

	res, err := r.Resolve(ctx, "fb", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Cached || res.Name != "Meta Platforms" {
		t.Errorf("Expected refreshed name, got %+v", res)
	}
	if got, _ := c.Get(ctx, "FB"); got != "Meta Platforms" {
		t.Errorf("Expected cache overwritten, got %q", got)
	}
	if n := lookup.Calls("FB"); n != 1 {
		t.Errorf("Expected lookup called once, got %d", n)
	}
}

func TestNegativeResultNotCached(t *testing.T) {
	ctx := context.Background()
	st := cache.NewMemoryStore()
	c := cache.New(st, time.Hour)
	lookup := newFakeLookup(nil)
	r := New(c, lookup)

	for i := 0; i < 2; i++ {
		res, err := r.Resolve(ctx, "NOPE", false)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if res.Resolved() || res.Name != types.NotAvailable {
			t.Errorf("Expected unresolved sentinel, got %+v", res)
		}
	}

	if _, found, _ := st.Load(ctx, "NOPE"); found {
		t.Error("Expected no record for unresolved symbol")
	}
	if n := lookup.Calls("NOPE"); n != 2 {
		t.Errorf("Expected every unresolved call to hit the provider, got %d", n)
	}
}

func TestEmptyNameTreatedAsUnresolved(t *testing.T) {
	r := New(cache.New(cache.NewMemoryStore(), time.Hour), newFakeLookup(map[string]string{"X": ""}))
	res, err := r.Resolve(context.Background(), "x", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Name != types.NotAvailable {
		t.Errorf("Expected sentinel for empty provider answer, got %q", res.Name)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	ctx := context.Background()
	st := cache.NewMemoryStore()
	lookup := newFakeLookup(nil)
	providerErr := errors.New("connection refused")
	lookup.err = providerErr
	r := New(cache.New(st, time.Hour), lookup)

	_, err := r.Resolve(ctx, "GOOG", false)
	if err == nil {
		t.Fatal("Expected transport error")
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport, got %v", err)
	}
	if !errors.Is(err, providerErr) {
		t.Errorf("Expected provider error to be preserved, got %v", err)
	}
	var lerr *LookupError
	if !errors.As(err, &lerr) || lerr.Symbol != "GOOG" {
		t.Errorf("Expected *LookupError for GOOG, got %v", err)
	}
	if n := lookup.Calls("GOOG"); n != 1 {
		t.Errorf("Expected no retries, got %d calls", n)
	}
	if recs, _ := st.List(ctx); len(recs) != 0 {
		t.Errorf("Expected nothing cached, got %v", recs)
	}
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, bool) { return "", false }
func (brokenCache) Put(context.Context, string, string) error  { return errors.New("read-only fs") }

func TestCacheWriteFailureIsAbsorbed(t *testing.T) {
	r := New(brokenCache{}, newFakeLookup(map[string]string{"NFLX": "Netflix"}))

	res, err := r.Resolve(context.Background(), "NFLX", false)
	if err != nil {
		t.Fatalf("Expected cache failure to be absorbed, got %v", err)
	}
	if res.Name != "Netflix" {
		t.Errorf("Expected name despite cache failure, got %q", res.Name)
	}
}

func TestResolveManyKeepsOrder(t *testing.T) {
	lookup := newFakeLookup(map[string]string{"A": "Agilent", "B": "Barnes", "C": "Citigroup"})
	r := New(cache.New(cache.NewMemoryStore(), time.Hour), lookup)

	results := ResolveMany(context.Background(), r, []string{"c", "zz", "a", "b"}, false)
	want := []string{"Citigroup", types.NotAvailable, "Agilent", "Barnes"}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("result %d: unexpected error %v", i, res.Err)
		}
		if res.Name != want[i] {
			t.Errorf("result %d: expected %q, got %q", i, want[i], res.Name)
		}
	}
}

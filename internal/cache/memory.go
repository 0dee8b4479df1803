package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"ticker-bot/internal/types"
)

// MemoryStore keeps records in a map. Records live for the process only.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]types.CacheRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]types.CacheRecord)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (types.CacheRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.data[key]
	return rec, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, rec types.CacheRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[rec.Key] = rec
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, rec := range m.data {
		if rec.WrittenAt.Before(cutoff) {
			delete(m.data, key)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) List(_ context.Context) ([]types.CacheRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]types.CacheRecord, 0, len(m.data))
	for _, rec := range m.data {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return recs, nil
}

func (m *MemoryStore) Close() error { return nil }

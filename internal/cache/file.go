package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ticker-bot/internal/types"
)

// FileStore keeps one JSON document per symbol in a directory.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// fileEntry is the on-disk document. cache_time is an RFC 3339 string.
type fileEntry struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	CacheTime   string `json:"cache_time"`
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Load(_ context.Context, key string) (types.CacheRecord, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.read(f.path(key))
}

func (f *FileStore) read(path string) (types.CacheRecord, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return types.CacheRecord{}, false, nil
	}
	if err != nil {
		return types.CacheRecord{}, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return types.CacheRecord{}, false, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	writtenAt, err := time.Parse(time.RFC3339Nano, entry.CacheTime)
	if err != nil {
		return types.CacheRecord{}, false, fmt.Errorf("decoding cache_time of %s: %w", entry.Ticker, err)
	}
	return types.CacheRecord{Key: entry.Ticker, Value: entry.CompanyName, WrittenAt: writtenAt}, true, nil
}

// Save writes to a temp file and renames it over the old document so a
// reader never sees a partial record.
func (f *FileStore) Save(_ context.Context, rec types.CacheRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(fileEntry{
		Ticker:      rec.Key,
		CompanyName: rec.Value,
		CacheTime:   rec.WrittenAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path(rec.Key)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	recs, paths, err := f.scan()
	if err != nil {
		return 0, err
	}
	n := 0
	for i, rec := range recs {
		if rec.WrittenAt.Before(cutoff) {
			if err := os.Remove(paths[i]); err != nil && !errors.Is(err, os.ErrNotExist) {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func (f *FileStore) List(_ context.Context) ([]types.CacheRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	recs, _, err := f.scan()
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return recs, nil
}

// scan skips documents it cannot decode.
func (f *FileStore) scan() ([]types.CacheRecord, []string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, nil, err
	}

	var (
		recs  []types.CacheRecord
		paths []string
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(f.dir, entry.Name())
		rec, ok, err := f.read(path)
		if err != nil || !ok {
			continue
		}
		recs = append(recs, rec)
		paths = append(paths, path)
	}
	return recs, paths, nil
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) path(key string) string {
	hash := md5.Sum([]byte(key))
	return filepath.Join(f.dir, fmt.Sprintf("%x.json", hash))
}

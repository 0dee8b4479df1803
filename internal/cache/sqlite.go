package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ticker-bot/internal/types"
)

// cacheTimeLayout has a fixed width so cache_time strings sort chronologically.
const cacheTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists records in a single company_cache table.
type SQLiteStore struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	s := &SQLiteStore{writeDB: writeDB}
	if err := s.init(); err != nil {
		writeDB.Close()
		return nil, err
	}

	// Opened after the schema exists so the read-only handle never races creation.
	// mode=ro is only honoured in file: URIs.
	readDB, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	s.readDB = readDB
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS company_cache (
			ticker       TEXT PRIMARY KEY,
			company_name TEXT NOT NULL,
			cache_time   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_company_cache_time ON company_cache(cache_time);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (types.CacheRecord, bool, error) {
	var (
		rec       types.CacheRecord
		cacheTime string
	)
	err := s.readDB.QueryRowContext(ctx,
		"SELECT ticker, company_name, cache_time FROM company_cache WHERE ticker = ?", key,
	).Scan(&rec.Key, &rec.Value, &cacheTime)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CacheRecord{}, false, nil
	}
	if err != nil {
		return types.CacheRecord{}, false, fmt.Errorf("querying %s: %w", key, err)
	}

	rec.WrittenAt, err = time.Parse(cacheTimeLayout, cacheTime)
	if err != nil {
		return types.CacheRecord{}, false, fmt.Errorf("parsing cache_time of %s: %w", key, err)
	}
	return rec, true, nil
}

// Save upserts in one statement, so the name and timestamp change together.
func (s *SQLiteStore) Save(ctx context.Context, rec types.CacheRecord) error {
	_, err := s.writeDB.ExecContext(ctx, `
		INSERT INTO company_cache (ticker, company_name, cache_time)
		VALUES (?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			company_name = excluded.company_name,
			cache_time = excluded.cache_time
	`, rec.Key, rec.Value, formatCacheTime(rec.WrittenAt))
	if err != nil {
		return fmt.Errorf("upserting %s: %w", rec.Key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.writeDB.ExecContext(ctx, "DELETE FROM company_cache WHERE ticker = ?", key)
	return err
}

func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.writeDB.ExecContext(ctx,
		"DELETE FROM company_cache WHERE cache_time < ?", formatCacheTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) List(ctx context.Context) ([]types.CacheRecord, error) {
	rows, err := s.readDB.QueryContext(ctx,
		"SELECT ticker, company_name, cache_time FROM company_cache ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var recs []types.CacheRecord
	for rows.Next() {
		var (
			rec       types.CacheRecord
			cacheTime string
		)
		if err := rows.Scan(&rec.Key, &rec.Value, &cacheTime); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if rec.WrittenAt, err = time.Parse(cacheTimeLayout, cacheTime); err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func formatCacheTime(t time.Time) string {
	return t.UTC().Format(cacheTimeLayout)
}

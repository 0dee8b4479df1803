package cache

import (
	"fmt"

	"ticker-bot/internal/store"
)

// Open builds the resolution cache described by cfg.
func Open(cfg *store.Config, opts ...Option) (*ResolutionCache, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Cache.Backend {
	case "SQLITE":
		st, err = OpenSQLite(cfg.Cache.Path)
	case "FILE":
		st, err = NewFileStore(cfg.Cache.Path)
	case "MEMORY":
		st = NewMemoryStore()
	default:
		err = fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if err != nil {
		return nil, err
	}
	return New(st, cfg.CacheTTL(), opts...), nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"ticker-bot/internal/bot"
	"ticker-bot/internal/cache"
	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/lookup"
	"ticker-bot/internal/lookup/lookupobs"
	"ticker-bot/internal/news"
	"ticker-bot/internal/news/newsobs"
	"ticker-bot/internal/resolver"
	"ticker-bot/internal/resolver/resolverobs"
	"ticker-bot/internal/sentiment"
	"ticker-bot/internal/sentiment/sentimentobs"
	"ticker-bot/internal/store"
	"ticker-bot/internal/trace"
)

// initializeSystem loads .env and initializes logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig reads path. A missing default config.yaml falls back to
// built-in defaults; a missing file named with --config is an error.
func loadConfig(ctx context.Context, path string, explicit bool) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		logger.Info(ctx, "No config file found, using defaults", "path", path)
		cfg = store.Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// app holds the long-lived instances built from config.
type app struct {
	cfg      *store.Config
	cache    *cache.ResolutionCache
	resolver interfaces.Resolver
	mover    interfaces.Mover
	news     *news.Service
	handler  *bot.Handler
}

func (a *app) Close() error {
	if a.cache != nil {
		return a.cache.Close()
	}
	return nil
}

// initializeApp wires cache, lookup, resolver, news and the command handler
func initializeApp(ctx context.Context, cfg *store.Config) (*app, error) {
	rc, err := cache.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	logger.Info(ctx, "Resolution cache ready", "backend", cfg.Cache.Backend, "path", cfg.Cache.Path, "ttl", rc.TTL())

	a := &app{cfg: cfg, cache: rc}

	nameLookup, mover, err := lookup.New(cfg)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("initializing lookup: %w", err)
	}
	a.mover = lookupobs.WrapMover(mover)
	a.resolver = resolverobs.Wrap(resolver.New(rc, lookupobs.Wrap(nameLookup)))

	a.news, err = initializeNews(ctx, cfg, a.mover)
	if err != nil {
		rc.Close()
		return nil, err
	}

	a.handler = bot.New(bot.Deps{
		Resolver:    a.resolver,
		News:        a.news,
		Prefix:      cfg.Bot.Prefix,
		Description: cfg.Bot.Description,
	})
	return a, nil
}

// initializeNews builds the headline selector with observability. A scorer
// that cannot be built leaves the selector in its unavailable mode.
func initializeNews(ctx context.Context, cfg *store.Config, mover interfaces.Mover) (*news.Service, error) {
	fetcher, err := news.NewFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing news: %w", err)
	}
	scorer := sentimentobs.Wrap(sentiment.New(ctx, cfg))

	selector := newsobs.Wrap(news.NewSelector(newsobs.WrapFetcher(fetcher), scorer))
	logger.Info(ctx, "Headline selector ready",
		"source", cfg.News.Source,
		"sentiment", cfg.Sentiment.Provider,
		"available", scorer != nil,
	)

	return news.NewService(selector, mover, news.ServiceConfig{
		MaxCandidates:   cfg.News.MaxCandidates,
		ExcludedSources: cfg.News.ExcludedSources,
	}), nil
}

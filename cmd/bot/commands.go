package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ticker-bot/internal/cache"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/resolver"
	"ticker-bot/internal/server"
	"ticker-bot/internal/store"
	"ticker-bot/internal/trace"
)

// withApp loads config, builds the app and runs fn under the --timeout deadline.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(ctx, flagConfig, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a, err := initializeApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}
	return fn(ctx, a)
}

var whoCmd = &cobra.Command{
	Use:   "who TICKER...",
	Short: "Print the company name for one or more tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			var failed int
			for _, res := range resolver.ResolveMany(ctx, a.resolver, args, flagRefresh) {
				switch {
				case res.Err != nil:
					failed++
					fmt.Printf("%s\tlookup failed: %v\n", res.Symbol, res.Err)
				case !res.Resolved():
					fmt.Printf("%s\tUnable to resolve stock ticker: %s\n", res.Symbol, res.Symbol)
				default:
					cached := ""
					if res.Cached {
						cached = "\t(cached)"
					}
					fmt.Printf("%s\t%s%s\n", res.Symbol, res.Name, cached)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d lookup(s) failed", failed)
			}
			return nil
		})
	},
}

var quoteCmd = &cobra.Command{
	Use:   "quote TICKER",
	Short: "Company name, session move and the headline behind it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			reply, _ := a.handler.Handle(ctx, a.cfg.Bot.Prefix+"quote "+args[0])
			fmt.Println(reply)
			return nil
		})
	},
}

var newsCmd = &cobra.Command{
	Use:   "news TICKER",
	Short: "The headline that best matches the session move",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			sel, err := a.news.Headline(ctx, args[0])
			if err != nil {
				return err
			}
			switch {
			case sel.Unavailable:
				fmt.Println("News is unavailable: no sentiment provider")
			case !sel.Found():
				fmt.Printf("%s %+.2f%%: no headline matches the move (%d scored)\n", sel.Symbol, sel.SignedPercent, sel.Scored)
			default:
				fmt.Printf("%s %+.2f%%\n%s\n%s\nscore %.3f from %s\n", sel.Symbol, sel.SignedPercent, sel.Headline, sel.URL, sel.Score, sel.Source)
			}
			return nil
		})
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read chat commands from stdin and print the replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig(ctx, flagConfig, cmd.Flags().Changed("config"))
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a, err := initializeApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("%s\nType %shelp for commands, Ctrl-D to quit.\n", cfg.Bot.Description, cfg.Bot.Prefix)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			if ctx.Err() != nil {
				break
			}
			lineCtx, cancel := context.WithTimeout(ctx, flagTimeout)
			reply, handled := a.handler.Handle(lineCtx, sc.Text())
			cancel()
			if handled {
				fmt.Println(reply)
			}
		}
		return sc.Err()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig(ctx, flagConfig, cmd.Flags().Changed("config"))
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a, err := initializeApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr: cfg.Server.Addr,
			Handler: server.New(server.Deps{
				Resolver: a.resolver,
				News:     a.news,
				Chat:     a.handler,
				Cache:    a.cache,
				Version:  trace.Version,
			}).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info(ctx, "HTTP server listening", "addr", cfg.Server.Addr)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info(context.Background(), "Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the resolution cache",
}

// openCache opens only the cache, so maintenance works without lookup credentials.
func openCache(cmd *cobra.Command) (*cache.ResolutionCache, *store.Config, error) {
	cfg, err := loadConfig(cmd.Context(), flagConfig, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	rc, err := cache.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	return rc, cfg, nil
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove records older than the cache TTL",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, _, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer rc.Close()

		deleted, err := rc.Prune(cmd.Context())
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}
		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d record(s) older than %s.\n", deleted, rc.TTL())
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, cfg, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer rc.Close()

		stats, err := rc.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		fmt.Printf("Cache: %s (%s)\n", cfg.Cache.Path, cfg.Cache.Backend)
		fmt.Printf("TTL: %s\n", rc.TTL())
		fmt.Printf("Records: %d (%d live, %d stale)\n", stats.Total, stats.Live, stats.Stale)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration tools",
}

var checkCmd = &cobra.Command{
	Use:   "check [BASE] [LOCAL]",
	Short: "Validate a config file and compare its keys with the local override",
	Long: `Validate BASE (default: the --config path) and report keys that are
missing from, or only present in, LOCAL (default: BASE with a _local suffix).`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := flagConfig
		if len(args) > 0 {
			base = args[0]
		}
		if _, err := store.LoadConfig(base); err != nil {
			return fmt.Errorf("%s: %w", base, err)
		}
		fmt.Printf("%s: valid\n", base)

		local := store.LocalPath(base)
		if len(args) > 1 {
			local = args[1]
		}
		if _, err := os.Stat(local); errors.Is(err, os.ErrNotExist) {
			fmt.Printf("%s: not present, nothing to compare\n", local)
			return nil
		}

		diff, err := store.CompareFiles(base, local)
		if err != nil {
			return err
		}
		if diff.Equivalent() {
			fmt.Printf("%s: keys match\n", local)
			return nil
		}
		for _, k := range diff.MissingComp {
			fmt.Printf("missing from %s: %s\n", local, k)
		}
		for _, k := range diff.ExtraComp {
			fmt.Printf("only in %s: %s\n", local, k)
		}
		return fmt.Errorf("%s and %s differ by %d key(s)", base, local, len(diff.MissingComp)+len(diff.ExtraComp))
	},
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ticker-bot/internal/trace"
)

var (
	commit = "none"
	date   = "unknown"
)

var (
	flagConfig  string
	flagRefresh bool
	flagTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "ticker-bot",
	Short: "Resolve stock tickers and find the headline behind the move",
	Long: `ticker-bot resolves ticker symbols to company names through a TTL cache
and picks the news headline whose sentiment best matches the day's price move.

Run "ticker-bot repl" for an interactive chat session or "ticker-bot serve"
for the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeSystem()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "deadline for one-shot commands")

	whoCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "ignore the cache and look the name up again")

	cacheCmd.AddCommand(pruneCmd, statsCmd)
	configCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(whoCmd, quoteCmd, newsCmd, replCmd, serveCmd, cacheCmd, configCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ticker-bot %s (commit: %s, built: %s)\n", trace.Version, commit, date)
	},
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	err := rootCmd.Execute()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(shutdownCtx)

	if err != nil {
		os.Exit(1)
	}
}

package sentiment

import (
	"context"
	"fmt"
	"os"

	"ticker-bot/internal/api"
	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/store"
)

// New builds the scorer selected by sentiment.provider. It returns a nil
// scorer, never an error, when the provider is NONE or cannot be set up:
// the headline selector treats that as its unavailable mode.
func New(ctx context.Context, cfg *store.Config) interfaces.Scorer {
	scorer, err := build(cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Sentiment scorer unavailable, headline selection disabled", err,
			"provider", cfg.Sentiment.Provider)
		return nil
	}
	if scorer == nil {
		logger.Warn(ctx, "No sentiment provider configured, headline selection disabled")
	}
	return scorer
}

func build(cfg *store.Config) (interfaces.Scorer, error) {
	llmCfg := LLMConfig{
		Model:       cfg.Sentiment.Model,
		MaxTokens:   cfg.Sentiment.MaxTokens,
		Temperature: cfg.Sentiment.Temperature,
	}
	client := api.NewClient(api.WithTimeout(cfg.NewsTimeout()), api.WithLogging(true))

	switch cfg.Sentiment.Provider {
	case "LEXICON":
		return NewLexicon(cfg.Sentiment.LexiconPath)
	case "OPENAI":
		return NewOpenAI(client, os.Getenv("OPENAI_API_KEY"), llmCfg)
	case "CLAUDE":
		return NewClaude(client, os.Getenv("ANTHROPIC_API_KEY"), llmCfg)
	case "NONE":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", cfg.Sentiment.Provider)
	}
}

package news

import (
	"context"
	"fmt"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/types"
)

// ServiceConfig holds the per-deployment selection limits.
type ServiceConfig struct {
	MaxCandidates   int
	ExcludedSources []string
}

// Service answers "why did it move" by pairing the session move from a
// Mover with a headline from a Selector.
type Service struct {
	selector interfaces.Selector
	mover    interfaces.Mover
	cfg      ServiceConfig
}

func NewService(selector interfaces.Selector, mover interfaces.Mover, cfg ServiceConfig) *Service {
	return &Service{selector: selector, mover: mover, cfg: cfg}
}

// Headline looks up the session move for symbol and selects a headline for it.
func (s *Service) Headline(ctx context.Context, symbol string) (types.Selection, error) {
	symbol = types.NormalizeSymbol(symbol)
	if s.mover == nil {
		return types.Selection{Symbol: symbol}, fmt.Errorf("no price source configured")
	}

	pct, err := s.mover.ChangePercent(ctx, symbol)
	if err != nil {
		return types.Selection{Symbol: symbol}, fmt.Errorf("fetching move for %s: %w", symbol, err)
	}
	logger.Debug(ctx, "Session move", "symbol", symbol, "change_pct", pct)

	return s.HeadlineFor(ctx, symbol, pct)
}

// HeadlineFor selects a headline for an already known move.
func (s *Service) HeadlineFor(ctx context.Context, symbol string, signedPercent float64) (types.Selection, error) {
	return s.selector.Select(ctx, symbol, signedPercent, s.cfg.MaxCandidates, s.cfg.ExcludedSources)
}

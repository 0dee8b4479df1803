package newsobs

import (
	"context"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/trace"
	"ticker-bot/internal/types"
)

// observableSelector wraps a Selector with observability (logging & tracing)
type observableSelector struct {
	selector interfaces.Selector
}

// Compile-time interface check
var _ interfaces.Selector = (*observableSelector)(nil)

// Wrap wraps a selector with observability middleware
func Wrap(selector interfaces.Selector) interfaces.Selector {
	return &observableSelector{selector: selector}
}

func (w *observableSelector) Select(ctx context.Context, symbol string, signedPercent float64, maxCandidates int, excludedSources []string) (types.Selection, error) {
	ctx, span := trace.StartSpan(ctx, "news.Select")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Selecting headline",
		"symbol", symbol,
		"change_pct", signedPercent,
		"max_candidates", maxCandidates,
		"excluded", len(excludedSources),
	)

	sel, err := w.selector.Select(ctx, symbol, signedPercent, maxCandidates, excludedSources)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Headline selection failed", err, "symbol", symbol)
		return sel, err
	}

	switch {
	case sel.Unavailable:
		logger.InfoSkip(ctx, 1, "Headline selection unavailable, no sentiment scorer", "symbol", symbol)
	case sel.Found():
		logger.InfoSkip(ctx, 1, "Headline selected", "symbol", symbol, "score", sel.Score, "scored", sel.Scored)
	default:
		logger.InfoSkip(ctx, 1, "No headline matched the move", "symbol", symbol, "scored", sel.Scored)
	}
	return sel, nil
}

// observableFetcher wraps a HeadlineFetcher with tracing and timing
type observableFetcher struct {
	fetcher interfaces.HeadlineFetcher
}

var _ interfaces.HeadlineFetcher = (*observableFetcher)(nil)

func WrapFetcher(fetcher interfaces.HeadlineFetcher) interfaces.HeadlineFetcher {
	return &observableFetcher{fetcher: fetcher}
}

func (of *observableFetcher) FetchClusters(ctx context.Context, symbol string) (*types.ClusterResponse, error) {
	op := logger.StartOperation(ctx, "news.FetchClusters", "symbol", symbol)

	resp, err := of.fetcher.FetchClusters(op.GetContext(), symbol)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}

	op.End("clusters", len(resp.Clusters))
	return resp, nil
}

package interfaces

import (
	"context"

	"ticker-bot/internal/types"
)

// HeadlineFetcher retrieves the raw clustered headline feed for a symbol.
type HeadlineFetcher interface {
	FetchClusters(ctx context.Context, symbol string) (*types.ClusterResponse, error)
}

// Scorer returns a compound polarity score in [-1, 1] for a piece of text.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Selector picks the single headline that best matches a price direction.
type Selector interface {
	Select(ctx context.Context, symbol string, signedPercent float64, maxCandidates int, excludedSources []string) (types.Selection, error)
}

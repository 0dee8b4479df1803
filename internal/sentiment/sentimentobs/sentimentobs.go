package sentimentobs

import (
	"context"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/trace"
)

// observableScorer wraps a Scorer with observability (logging & tracing)
type observableScorer struct {
	scorer interfaces.Scorer
}

// Compile-time interface check
var _ interfaces.Scorer = (*observableScorer)(nil)

// Wrap wraps a scorer with observability middleware. A nil scorer stays nil
// so the selector still sees it as unavailable.
func Wrap(scorer interfaces.Scorer) interfaces.Scorer {
	if scorer == nil {
		return nil
	}
	return &observableScorer{scorer: scorer}
}

func (o *observableScorer) Score(ctx context.Context, text string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "sentiment.Score")
	defer span.End()

	score, err := o.scorer.Score(ctx, text)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to score headline", err, "headline", text)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Headline scored", "headline", text, "score", score)
	return score, nil
}

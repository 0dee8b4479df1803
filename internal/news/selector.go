package news

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/types"
)

// ErrFetch marks failures to retrieve or decode a headline feed.
var ErrFetch = errors.New("headline fetch failed")

// FetchError carries a feed failure for one symbol. It matches ErrFetch.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching headlines for %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// HeadlineSelector picks the headline whose sentiment best matches the
// direction of a price move. It keeps no state between calls.
type HeadlineSelector struct {
	fetcher interfaces.HeadlineFetcher
	scorer  interfaces.Scorer
}

var _ interfaces.Selector = (*HeadlineSelector)(nil)

// NewSelector builds a selector. A nil scorer puts it in degraded mode:
// every Select returns an Unavailable selection without fetching.
func NewSelector(fetcher interfaces.HeadlineFetcher, scorer interfaces.Scorer) *HeadlineSelector {
	return &HeadlineSelector{fetcher: fetcher, scorer: scorer}
}

// Available is false in degraded mode.
func (s *HeadlineSelector) Available() bool {
	return s.scorer != nil
}

// Select fetches the feed for symbol, keeps at most maxCandidates unique
// headlines not published by an excluded source, scores them and returns the
// best one for the sign of signedPercent. A zero Selection headline means
// nothing beat the neutral score.
func (s *HeadlineSelector) Select(ctx context.Context, symbol string, signedPercent float64, maxCandidates int, excludedSources []string) (types.Selection, error) {
	symbol = types.NormalizeSymbol(symbol)
	sel := types.Selection{Symbol: symbol, SignedPercent: signedPercent}

	if s.scorer == nil {
		sel.Unavailable = true
		return sel, nil
	}

	resp, err := s.fetcher.FetchClusters(ctx, symbol)
	if err != nil {
		return sel, &FetchError{Symbol: symbol, Err: err}
	}

	candidates := Candidates(resp, maxCandidates, excludedSources)
	scored := make([]types.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		score, err := s.scorer.Score(ctx, c.Headline)
		if err != nil {
			return sel, fmt.Errorf("scoring headline %q: %w", c.Headline, err)
		}
		scored = append(scored, types.ScoredCandidate{Candidate: c, Score: clampScore(score)})
	}
	sel.Scored = len(scored)

	if best, ok := Best(scored, types.WantPositive(signedPercent)); ok {
		sel.Headline = best.Headline
		sel.URL = best.URL
		sel.Source = best.Source
		sel.Score = best.Score
		logger.Headline(ctx, symbol, best.URL, best.Score, signedPercent, "candidates", len(scored))
	} else {
		logger.Debug(ctx, "No headline beat the neutral score", "symbol", symbol, "candidates", len(scored))
	}
	return sel, nil
}

// Candidates walks the clusters in order and collects headlines. End of list
// markers and clusters without articles are skipped. A repeated headline
// replaces the earlier entry at its original position. Collection stops once
// maxCandidates unique headlines are held; maxCandidates <= 0 means no cap.
func Candidates(resp *types.ClusterResponse, maxCandidates int, excludedSources []string) []types.Candidate {
	if resp == nil {
		return nil
	}

	excluded := make(map[string]struct{}, len(excludedSources))
	for _, src := range excludedSources {
		excluded[strings.ToLower(strings.TrimSpace(src))] = struct{}{}
	}

	var (
		out   []types.Candidate
		index = make(map[string]int)
	)
	for _, cl := range resp.Clusters {
		if cl.EndOfList() || len(cl.Articles) == 0 {
			continue
		}
		for _, a := range cl.Articles {
			if maxCandidates > 0 && len(out) >= maxCandidates {
				return out
			}
			if _, skip := excluded[strings.ToLower(strings.TrimSpace(a.Source))]; skip {
				continue
			}
			headline := CleanHeadline(a.Title)
			if headline == "" {
				continue
			}

			c := types.Candidate{Headline: headline, URL: strings.TrimSpace(a.URL), Source: a.Source}
			if i, dup := index[headline]; dup {
				out[i] = c
				continue
			}
			index[headline] = len(out)
			out = append(out, c)
		}
	}
	return out
}

// Best returns the first candidate with the most extreme score in the wanted
// direction. The running best starts at 0 and only strict improvements
// replace it, so ties keep the earlier candidate and a list with nothing on
// the wanted side of zero has no winner.
func Best(scored []types.ScoredCandidate, wantPositive bool) (types.ScoredCandidate, bool) {
	var (
		best  types.ScoredCandidate
		found bool
	)
	for _, c := range scored {
		if (wantPositive && c.Score > best.Score) || (!wantPositive && c.Score < best.Score) {
			best = c
			found = true
		}
	}
	return best, found
}

func clampScore(score float64) float64 {
	switch {
	case score > 1:
		return 1
	case score < -1:
		return -1
	default:
		return score
	}
}

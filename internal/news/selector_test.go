package news

import (
	"context"
	"errors"
	"testing"

	"ticker-bot/internal/types"
)

type fakeFetcher struct {
	resp  *types.ClusterResponse
	err   error
	calls int
}

func (f *fakeFetcher) FetchClusters(context.Context, string) (*types.ClusterResponse, error) {
	f.calls++
	return f.resp, f.err
}

// fakeScorer answers from a table and records what it was asked to score.
type fakeScorer struct {
	scores map[string]float64
	seen   []string
	err    error
}

func (f *fakeScorer) Score(_ context.Context, text string) (float64, error) {
	f.seen = append(f.seen, text)
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[text], nil
}

func feed(articles ...types.Article) *types.ClusterResponse {
	return &types.ClusterResponse{Clusters: []types.Cluster{{ID: "1", Articles: articles}}}
}

func art(source, title string) types.Article {
	return types.Article{Source: source, Title: title, URL: "https://news.example.com/" + title}
}

func TestSelectDirectional(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"up": 0.2, "down": -0.3, "soar": 0.4}}
	s := NewSelector(&fakeFetcher{resp: feed(art("a", "up"), art("b", "down"), art("c", "soar"))}, scorer)
	ctx := context.Background()

	tests := []struct {
		pct  float64
		want string
	}{
		{-1.5, "down"},
		{1.5, "soar"},
		{0, "soar"},
	}
	for _, tt := range tests {
		sel, err := s.Select(ctx, "aapl", tt.pct, 10, nil)
		if err != nil {
			t.Fatalf("Select(%v): %v", tt.pct, err)
		}
		if sel.Headline != tt.want {
			t.Errorf("Select(%v) = %q, want %q", tt.pct, sel.Headline, tt.want)
		}
		if sel.URL != "https://news.example.com/"+tt.want {
			t.Errorf("Select(%v) url = %q", tt.pct, sel.URL)
		}
		if sel.Symbol != "AAPL" || sel.Scored != 3 {
			t.Errorf("Unexpected selection metadata: %+v", sel)
		}
	}
}

func TestSelectTieKeepsFirst(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"h1": 0.5, "h2": 0.5}}
	s := NewSelector(&fakeFetcher{resp: feed(art("a", "h1"), art("b", "h2"))}, scorer)

	sel, err := s.Select(context.Background(), "X", 2.0, 10, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Headline != "h1" || sel.Score != 0.5 {
		t.Errorf("Expected h1 to win the tie, got %+v", sel)
	}
}

func TestSelectNoWinner(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"bad": -0.6, "worse": -0.9, "flat": 0}}
	s := NewSelector(&fakeFetcher{resp: feed(art("a", "bad"), art("b", "worse"), art("c", "flat"))}, scorer)

	sel, err := s.Select(context.Background(), "X", 0.8, 10, nil)
	if err != nil {
		t.Fatalf("Expected no error for no-winner case, got %v", err)
	}
	if sel.Found() || sel.Headline != "" || sel.URL != "" || sel.Score != 0 {
		t.Errorf("Expected empty selection, got %+v", sel)
	}
	if sel.Unavailable {
		t.Error("No winner must not be reported as unavailable")
	}
}

func TestSelectExcludedSourcesNeverScored(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"great": 0.99, "fine": 0.1}}
	s := NewSelector(&fakeFetcher{resp: feed(art("Spam Wire", "great"), art("Reuters", "fine"))}, scorer)

	sel, err := s.Select(context.Background(), "X", 1, 10, []string{"spam wire"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Headline != "fine" {
		t.Errorf("Expected excluded winner to be skipped, got %q", sel.Headline)
	}
	for _, h := range scorer.seen {
		if h == "great" {
			t.Error("Excluded headline reached the scorer")
		}
	}
}

func TestSelectCapRespected(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"e": 0.9}}
	resp := feed(art("x", "a"), art("blocked", "b"), art("x", "c"), art("x", "d"), art("x", "e"), art("x", "f"))
	s := NewSelector(&fakeFetcher{resp: resp}, scorer)

	sel, err := s.Select(context.Background(), "X", 1, 2, []string{"blocked"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(scorer.seen) != 2 || scorer.seen[0] != "a" || scorer.seen[1] != "c" {
		t.Errorf("Expected only a and c scored, got %v", scorer.seen)
	}
	if sel.Found() {
		t.Errorf("Expected no winner among capped candidates, got %+v", sel)
	}
}

func TestSelectDegradedMode(t *testing.T) {
	fetcher := &fakeFetcher{resp: feed(art("a", "h"))}
	s := NewSelector(fetcher, nil)

	if s.Available() {
		t.Error("Expected selector without scorer to be unavailable")
	}
	for i := 0; i < 2; i++ {
		sel, err := s.Select(context.Background(), "msft", -3, 10, nil)
		if err != nil {
			t.Fatalf("Expected no error in degraded mode, got %v", err)
		}
		if !sel.Unavailable || sel.Found() || sel.Symbol != "MSFT" {
			t.Errorf("Expected unavailable selection, got %+v", sel)
		}
	}
	if fetcher.calls != 0 {
		t.Errorf("Expected no fetch in degraded mode, got %d", fetcher.calls)
	}
}

func TestSelectFetchError(t *testing.T) {
	netErr := errors.New("connection reset")
	fetcher := &fakeFetcher{err: netErr}
	s := NewSelector(fetcher, &fakeScorer{})

	_, err := s.Select(context.Background(), "X", 1, 10, nil)
	if !errors.Is(err, ErrFetch) || !errors.Is(err, netErr) {
		t.Errorf("Expected fetch error wrapping %v, got %v", netErr, err)
	}
	var ferr *FetchError
	if !errors.As(err, &ferr) || ferr.Symbol != "X" {
		t.Errorf("Expected *FetchError, got %T", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("Expected a single fetch attempt, got %d", fetcher.calls)
	}
}

func TestSelectScorerError(t *testing.T) {
	s := NewSelector(&fakeFetcher{resp: feed(art("a", "h"))}, &fakeScorer{err: errors.New("rate limited")})
	if _, err := s.Select(context.Background(), "X", 1, 10, nil); err == nil {
		t.Error("Expected scorer error to propagate")
	}
}

func TestSelectClampsScores(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"wild": 3.5}}
	s := NewSelector(&fakeFetcher{resp: feed(art("a", "wild"))}, scorer)

	sel, _ := s.Select(context.Background(), "X", 1, 10, nil)
	if sel.Score != 1 {
		t.Errorf("Expected score clamped to 1, got %v", sel.Score)
	}
}

func TestCandidatesSkipsMarkersAndEmptyClusters(t *testing.T) {
	resp := &types.ClusterResponse{Clusters: []types.Cluster{
		{ID: "10"},
		{ID: "11", Articles: []types.Article{art("a", "first")}},
		{ID: "-1", Articles: []types.Article{art("a", "marker")}},
		{ID: "12", Articles: []types.Article{art("b", "second"), {Source: "c", Title: "   "}}},
	}}

	got := Candidates(resp, 0, nil)
	if len(got) != 2 || got[0].Headline != "first" || got[1].Headline != "second" {
		t.Errorf("Unexpected candidates %+v", got)
	}
	if Candidates(nil, 5, nil) != nil {
		t.Error("Expected nil candidates for nil response")
	}
}

func TestCandidatesDuplicateOverwritesInPlace(t *testing.T) {
	resp := feed(
		types.Article{Source: "a", Title: "Same", URL: "u1"},
		types.Article{Source: "b", Title: "Other", URL: "u2"},
		types.Article{Source: "c", Title: "Same", URL: "u3"},
	)

	got := Candidates(resp, 10, nil)
	if len(got) != 2 {
		t.Fatalf("Expected 2 unique candidates, got %d", len(got))
	}
	if got[0].Headline != "Same" || got[0].URL != "u3" || got[0].Source != "c" {
		t.Errorf("Expected later duplicate to overwrite first slot, got %+v", got[0])
	}
	if got[1].URL != "u2" {
		t.Errorf("Expected second slot untouched, got %+v", got[1])
	}
}

func TestBest(t *testing.T) {
	scored := []types.ScoredCandidate{
		{Candidate: types.Candidate{Headline: "a"}, Score: -0.2},
		{Candidate: types.Candidate{Headline: "b"}, Score: -0.7},
		{Candidate: types.Candidate{Headline: "c"}, Score: -0.7},
	}
	best, ok := Best(scored, false)
	if !ok || best.Headline != "b" {
		t.Errorf("Expected b, got %+v %v", best, ok)
	}
	if _, ok := Best(scored, true); ok {
		t.Error("Expected no positive winner")
	}
	if _, ok := Best(nil, true); ok {
		t.Error("Expected no winner for empty input")
	}
}

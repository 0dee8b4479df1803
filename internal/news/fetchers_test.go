package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticker-bot/internal/store"
)

const rssPayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Yahoo! Finance: AAPL News</title>
  <item>
    <title>Apple &lt;b&gt;surges&lt;/b&gt; on record iPhone sales</title>
    <link>https://www.reuters.com/markets/apple-surges</link>
  </item>
  <item>
    <title>Apple faces antitrust probe</title>
    <link>https://finance.yahoo.com/news/apple-probe</link>
  </item>
</channel>
</rss>`

func TestRSSFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") != "AAPL" {
			t.Errorf("Expected symbol in query, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssPayload))
	}))
	defer srv.Close()

	resp, err := NewRSSFetcher(srv.URL+"/rss?s={symbol}").FetchClusters(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchClusters: %v", err)
	}
	if len(resp.Clusters) != 1 || len(resp.Clusters[0].Articles) != 2 {
		t.Fatalf("Expected one cluster with two articles, got %+v", resp)
	}

	a := resp.Clusters[0].Articles[0]
	if a.Source != "reuters.com" || a.URL != "https://www.reuters.com/markets/apple-surges" {
		t.Errorf("Unexpected article %+v", a)
	}

	got := Candidates(resp, 10, []string{"finance.yahoo.com"})
	if len(got) != 1 || got[0].Headline != "Apple surges on record iPhone sales" {
		t.Errorf("Unexpected candidates %+v", got)
	}
}

func TestRSSFetcherError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewRSSFetcher(srv.URL + "/{symbol}").FetchClusters(context.Background(), "AAPL"); err == nil {
		t.Error("Expected error for failing feed")
	}
}

const newsPage = `<html><body>
<ul>
  <li class="story"><h3><a href="/news/1">TCS wins large deal</a></h3></li>
  <li class="story"><h3><a href="https://other.example.com/2">TCS margins under pressure</a></h3></li>
  <li class="story"><h3></h3></li>
</ul>
</body></html>`

func TestScraper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote/TCS/news" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(newsPage))
	}))
	defer srv.Close()

	sources := []store.ScrapeSource{{
		Name:       "Local",
		BaseURL:    srv.URL,
		SearchPath: "/quote/{symbol}/news",
		Container:  "li.story",
		Title:      "h3 a",
		Link:       "h3 a",
	}}
	resp, err := NewScraper(sources, 5*time.Second).FetchClusters(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("FetchClusters: %v", err)
	}
	if len(resp.Clusters) != 1 || resp.Clusters[0].ID != "Local" {
		t.Fatalf("Unexpected clusters %+v", resp.Clusters)
	}

	articles := resp.Clusters[0].Articles
	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %+v", articles)
	}
	if articles[0].URL != srv.URL+"/news/1" {
		t.Errorf("Expected absolute URL, got %q", articles[0].URL)
	}
	if articles[1].Title != "TCS margins under pressure" || articles[0].Source != "Local" {
		t.Errorf("Unexpected articles %+v", articles)
	}
}

func TestScraperAllSourcesFail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	sources := []store.ScrapeSource{{Name: "Broken", BaseURL: srv.URL, SearchPath: "/{symbol}", Container: "li", Title: "a", Link: "a"}}
	if _, err := NewScraper(sources, time.Second).FetchClusters(context.Background(), "TCS"); err == nil {
		t.Error("Expected error when every source fails")
	}
}

func TestCleanHeadline(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Plain   headline ", "Plain headline"},
		{"<b>Bold</b> move &amp; more", "Bold move & more"},
		{"AT&T cuts dividend", "AT&T cuts dividend"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanHeadline(tt.in); got != tt.want {
			t.Errorf("CleanHeadline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type fakeMover struct {
	pct float64
	err error
}

func (f fakeMover) ChangePercent(context.Context, string) (float64, error) {
	return f.pct, f.err
}

func TestServiceUsesMoveDirection(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"rally": 0.7, "slump": -0.8}}
	sel := NewSelector(&fakeFetcher{resp: feed(art("a", "rally"), art("b", "slump"))}, scorer)

	down := NewService(sel, fakeMover{pct: -2.4}, ServiceConfig{MaxCandidates: 10})
	got, err := down.Headline(context.Background(), "nflx")
	if err != nil {
		t.Fatalf("Headline: %v", err)
	}
	if got.Headline != "slump" || got.SignedPercent != -2.4 {
		t.Errorf("Expected slump for a falling stock, got %+v", got)
	}

	up := NewService(sel, fakeMover{pct: 0.3}, ServiceConfig{MaxCandidates: 10})
	if got, _ := up.Headline(context.Background(), "nflx"); got.Headline != "rally" {
		t.Errorf("Expected rally for a rising stock, got %+v", got)
	}
}

func TestServiceMoverError(t *testing.T) {
	svc := NewService(NewSelector(&fakeFetcher{}, &fakeScorer{}), fakeMover{err: context.DeadlineExceeded}, ServiceConfig{})
	if _, err := svc.Headline(context.Background(), "X"); err == nil {
		t.Error("Expected mover error")
	}
}

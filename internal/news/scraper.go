package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"ticker-bot/internal/api"
	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/store"
	"ticker-bot/internal/types"
)

// Scraper builds clusters from news sites' symbol pages, one cluster per
// configured source in configuration order.
type Scraper struct {
	sources []store.ScrapeSource
	timeout time.Duration
}

var _ interfaces.HeadlineFetcher = (*Scraper)(nil)

func NewScraper(sources []store.ScrapeSource, timeout time.Duration) *Scraper {
	return &Scraper{sources: sources, timeout: timeout}
}

// FetchClusters fails only when every source fails; a single broken site is
// logged and contributes an empty cluster.
func (s *Scraper) FetchClusters(ctx context.Context, symbol string) (*types.ClusterResponse, error) {
	resp := &types.ClusterResponse{Clusters: make([]types.Cluster, 0, len(s.sources))}

	var lastErr error
	failed := 0
	for _, source := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		articles, err := s.scrapeSource(ctx, source, symbol)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "symbol", symbol)
			lastErr = err
			failed++
			continue
		}
		resp.Clusters = append(resp.Clusters, types.Cluster{ID: source.Name, Articles: articles})
	}

	if len(s.sources) > 0 && failed == len(s.sources) {
		return nil, fmt.Errorf("all %d sources failed: %w", failed, lastErr)
	}
	return resp, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source store.ScrapeSource, symbol string) ([]types.Article, error) {
	var articles []types.Article

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", api.UserAgent)
	})

	c.OnHTML(source.Container, func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText(source.Title))
		if title == "" {
			return
		}
		link := e.ChildAttr(source.Link, "href")
		if link == "" {
			return
		}
		articles = append(articles, types.Article{
			Source: source.Name,
			Title:  title,
			URL:    e.Request.AbsoluteURL(link),
		})
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{symbol}", url.PathEscape(symbol))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("visiting %s: %w", searchURL, err)
	}
	c.Wait()

	if visitErr != nil {
		return nil, fmt.Errorf("scraping %s: %w", searchURL, visitErr)
	}
	return articles, nil
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

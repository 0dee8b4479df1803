package news

import (
	"fmt"
	"net/http"

	"ticker-bot/internal/api"
	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/store"
)

// NewFetcher builds the headline fetcher selected by news.source.
func NewFetcher(cfg *store.Config) (interfaces.HeadlineFetcher, error) {
	switch cfg.News.Source {
	case "CLUSTERS":
		client := api.NewClient(api.WithTimeout(cfg.NewsTimeout()), api.WithLogging(true))
		return NewClusterFetcher(client, cfg.News.URL), nil
	case "RSS":
		f := NewRSSFetcher(cfg.News.URL)
		f.parser.Client = &http.Client{Timeout: cfg.NewsTimeout()}
		return f, nil
	case "SCRAPE":
		return NewScraper(cfg.News.ScrapeSources, cfg.NewsTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown news source %q", cfg.News.Source)
	}
}

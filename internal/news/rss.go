package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/types"
)

// RSSFetcher reads a per-symbol RSS or Atom feed. The whole feed becomes a
// single cluster in item order; the publisher is the link's host name.
type RSSFetcher struct {
	parser  *gofeed.Parser
	baseURL string
}

var _ interfaces.HeadlineFetcher = (*RSSFetcher)(nil)

// NewRSSFetcher takes a URL template containing {symbol}.
func NewRSSFetcher(baseURL string) *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser(), baseURL: baseURL}
}

func (f *RSSFetcher) FetchClusters(ctx context.Context, symbol string) (*types.ClusterResponse, error) {
	feedURL := strings.ReplaceAll(f.baseURL, "{symbol}", url.QueryEscape(symbol))
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedURL, err)
	}

	cluster := types.Cluster{ID: "rss", Articles: make([]types.Article, 0, len(feed.Items))}
	for _, item := range feed.Items {
		cluster.Articles = append(cluster.Articles, types.Article{
			Source: publisher(item.Link),
			Title:  item.Title,
			URL:    item.Link,
		})
	}
	return &types.ClusterResponse{Clusters: []types.Cluster{cluster}}, nil
}

func publisher(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

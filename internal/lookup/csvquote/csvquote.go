package csvquote

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"ticker-bot/internal/api"
	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/types"
)

// Lookup queries a quotes.csv style endpoint: GET <url>?s=<symbol>&f=<format>
// answers with a single CSV row whose first field is the requested value.
type Lookup struct {
	client  *api.Client
	baseURL string
	format  string
}

var _ interfaces.NameLookup = (*Lookup)(nil)

// New builds a lookup against baseURL. A baseURL containing {symbol} is used
// as a template instead of receiving the s and f query parameters.
func New(client *api.Client, baseURL, format string) *Lookup {
	if format == "" {
		format = "n"
	}
	return &Lookup{client: client, baseURL: baseURL, format: format}
}

func (l *Lookup) Lookup(ctx context.Context, symbol string) (string, error) {
	resp, err := l.client.GET(ctx, l.requestURL(symbol), api.FeedHeaders())
	if err != nil {
		return "", err
	}
	return parseName(resp.Body)
}

func (l *Lookup) requestURL(symbol string) string {
	if strings.Contains(l.baseURL, "{symbol}") {
		return strings.ReplaceAll(l.baseURL, "{symbol}", url.QueryEscape(symbol))
	}
	q := url.Values{}
	q.Set("s", symbol)
	q.Set("f", l.format)
	sep := "?"
	if strings.Contains(l.baseURL, "?") {
		sep = "&"
	}
	return l.baseURL + sep + q.Encode()
}

// parseName takes the first field of the first row. Blank answers are N/A.
func parseName(body []byte) (string, error) {
	r := csv.NewReader(strings.NewReader(string(body)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	record, err := r.Read()
	if errors.Is(err, io.EOF) {
		return types.NotAvailable, nil
	}
	if err != nil {
		return "", fmt.Errorf("parsing quote csv: %w", err)
	}
	if len(record) == 0 {
		return types.NotAvailable, nil
	}
	name := strings.TrimSpace(record[0])
	if name == "" || strings.EqualFold(name, types.NotAvailable) {
		return types.NotAvailable, nil
	}
	return name, nil
}

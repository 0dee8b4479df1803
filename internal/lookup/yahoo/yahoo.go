package yahoo

import (
	"context"
	"fmt"
	"strings"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/types"
)

// QuoteFunc fetches a single quote; nil with a nil error means unknown symbol.
type QuoteFunc func(symbol string) (*finance.Quote, error)

// Yahoo resolves names and session moves from Yahoo Finance quotes.
type Yahoo struct {
	get QuoteFunc
}

var (
	_ interfaces.NameLookup = (*Yahoo)(nil)
	_ interfaces.Mover      = (*Yahoo)(nil)
)

func New() *Yahoo {
	return &Yahoo{get: quote.Get}
}

// NewWithQuoteFunc is used by tests and by callers with their own quote source.
func NewWithQuoteFunc(get QuoteFunc) *Yahoo {
	return &Yahoo{get: get}
}

func (y *Yahoo) Lookup(ctx context.Context, symbol string) (string, error) {
	q, err := y.fetch(ctx, symbol)
	if err != nil {
		return "", err
	}
	if q == nil || strings.TrimSpace(q.ShortName) == "" {
		return types.NotAvailable, nil
	}
	return strings.TrimSpace(q.ShortName), nil
}

func (y *Yahoo) ChangePercent(ctx context.Context, symbol string) (float64, error) {
	q, err := y.fetch(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if q == nil {
		return 0, fmt.Errorf("no quote for %s", symbol)
	}
	return q.RegularMarketChangePercent, nil
}

// fetch runs the blocking quote call so a cancelled ctx returns promptly.
func (y *Yahoo) fetch(ctx context.Context, symbol string) (*finance.Quote, error) {
	type result struct {
		q   *finance.Quote
		err error
	}
	ch := make(chan result, 1)
	go func() {
		q, err := y.get(symbol)
		ch <- result{q, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("yahoo quote %s: %w", symbol, r.err)
		}
		return r.q, nil
	}
}

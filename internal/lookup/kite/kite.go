package kite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/types"
)

// instrumentsTTL matches the daily refresh of the Kite instrument dump.
const instrumentsTTL = 24 * time.Hour

// Kite resolves NSE/BSE trading symbols to company names from the
// instrument dump and computes session moves from OHLC quotes.
type Kite struct {
	kc       source
	exchange string
	now      func() time.Time

	mu       sync.RWMutex
	names    map[string]string
	loadedAt time.Time
}

var (
	_ interfaces.NameLookup = (*Kite)(nil)
	_ interfaces.Mover      = (*Kite)(nil)
)

// New connects with the KITE_API_KEY and KITE_ACCESS_TOKEN credentials.
func New(apiKey, accessToken, exchange string) (*Kite, error) {
	if apiKey == "" || accessToken == "" {
		return nil, errors.New("KITE_API_KEY and KITE_ACCESS_TOKEN are required for the kite lookup")
	}
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return newWithSource(kc, exchange), nil
}

func newWithSource(kc source, exchange string) *Kite {
	if exchange == "" {
		exchange = "NSE"
	}
	return &Kite{kc: kc, exchange: strings.ToUpper(exchange), now: time.Now}
}

func (k *Kite) Lookup(ctx context.Context, symbol string) (string, error) {
	if err := k.ensureInstruments(ctx); err != nil {
		return "", err
	}

	k.mu.RLock()
	name, ok := k.names[symbol]
	k.mu.RUnlock()

	if !ok || name == "" {
		return types.NotAvailable, nil
	}
	return name, nil
}

// ChangePercent is the move of the last traded price against the previous close.
func (k *Kite) ChangePercent(ctx context.Context, symbol string) (float64, error) {
	key := k.exchange + ":" + symbol
	quotes, err := k.kc.GetOHLC(key)
	if err != nil {
		return 0, fmt.Errorf("kite ohlc %s: %w", key, err)
	}
	q, ok := quotes[key]
	if !ok {
		return 0, fmt.Errorf("no ohlc quote for %s", key)
	}
	if q.OHLC.Close == 0 {
		return 0, fmt.Errorf("no previous close for %s", key)
	}
	return (q.LastPrice - q.OHLC.Close) / q.OHLC.Close * 100, nil
}

func (k *Kite) ensureInstruments(ctx context.Context) error {
	k.mu.RLock()
	fresh := k.names != nil && k.now().Sub(k.loadedAt) < instrumentsTTL
	k.mu.RUnlock()
	if fresh {
		return nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.names != nil && k.now().Sub(k.loadedAt) < instrumentsTTL {
		return nil
	}

	instruments, err := k.kc.GetInstrumentsByExchange(k.exchange)
	if err != nil {
		return fmt.Errorf("kite instruments %s: %w", k.exchange, err)
	}

	names := make(map[string]string, len(instruments))
	for _, inst := range instruments {
		if inst.Tradingsymbol == "" {
			continue
		}
		names[strings.ToUpper(inst.Tradingsymbol)] = strings.TrimSpace(inst.Name)
	}
	k.names = names
	k.loadedAt = k.now()

	logger.Info(ctx, "Loaded kite instruments", "exchange", k.exchange, "count", len(names))
	return nil
}

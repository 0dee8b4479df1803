package kite

import (
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// source is the part of the Kite Connect REST client the lookup uses.
// *kiteconnect.Client satisfies it.
type source interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
	GetOHLC(instruments ...string) (kiteconnect.QuoteOHLC, error)
}

var _ source = (*kiteconnect.Client)(nil)

package interfaces

import "context"

// NameLookup resolves a normalized ticker to a display name, or
// types.NotAvailable when the provider does not know the symbol.
type NameLookup interface {
	Lookup(ctx context.Context, symbol string) (string, error)
}

// Mover reports the signed percentage price change of a symbol for the session.
type Mover interface {
	ChangePercent(ctx context.Context, symbol string) (float64, error)
}

package interfaces

import (
	"context"

	"ticker-bot/internal/types"
)

// Resolver maps ticker symbols to display names through the resolution cache.
type Resolver interface {
	Resolve(ctx context.Context, symbol string, forceRefresh bool) (types.Resolution, error)
}

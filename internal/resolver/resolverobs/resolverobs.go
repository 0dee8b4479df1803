package resolverobs

import (
	"context"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/trace"
	"ticker-bot/internal/types"
)

// observableResolver wraps a Resolver with observability (logging & tracing)
type observableResolver struct {
	resolver interfaces.Resolver
}

// Compile-time interface check
var _ interfaces.Resolver = (*observableResolver)(nil)

// Wrap wraps a resolver with observability middleware
func Wrap(resolver interfaces.Resolver) interfaces.Resolver {
	return &observableResolver{
		resolver: resolver,
	}
}

// Resolve resolves a symbol with observability
func (or *observableResolver) Resolve(ctx context.Context, symbol string, forceRefresh bool) (types.Resolution, error) {
	ctx, span := trace.StartSpan(ctx, "resolver.Resolve")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Resolving symbol", "symbol", symbol, "force_refresh", forceRefresh)

	res, err := or.resolver.Resolve(ctx, symbol, forceRefresh)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to resolve symbol", err, "symbol", symbol)
		return res, err
	}

	if !res.Resolved() {
		logger.InfoSkip(ctx, 1, "Symbol could not be resolved", "symbol", res.Symbol)
		return res, nil
	}

	logger.Resolution(ctx, res.Symbol, res.Name, res.Cached, "force_refresh", forceRefresh)
	return res, nil
}

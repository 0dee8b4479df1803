package lookupobs

import (
	"context"

	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/logger"
	"ticker-bot/internal/trace"
)

// observableLookup wraps a NameLookup with logging and tracing
type observableLookup struct {
	lookup interfaces.NameLookup
}

var _ interfaces.NameLookup = (*observableLookup)(nil)

func Wrap(lookup interfaces.NameLookup) interfaces.NameLookup {
	return &observableLookup{lookup: lookup}
}

func (ol *observableLookup) Lookup(ctx context.Context, symbol string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "lookup.Lookup")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Looking up company name", "symbol", symbol)

	name, err := ol.lookup.Lookup(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Company name lookup failed", err, "symbol", symbol)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Company name looked up", "symbol", symbol, "name", name)
	return name, nil
}

// observableMover wraps a Mover with logging and tracing
type observableMover struct {
	mover interfaces.Mover
}

var _ interfaces.Mover = (*observableMover)(nil)

func WrapMover(mover interfaces.Mover) interfaces.Mover {
	return &observableMover{mover: mover}
}

func (om *observableMover) ChangePercent(ctx context.Context, symbol string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "lookup.ChangePercent")
	defer span.End()

	pct, err := om.mover.ChangePercent(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch session move", err, "symbol", symbol)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Session move fetched", "symbol", symbol, "change_pct", pct)
	return pct, nil
}

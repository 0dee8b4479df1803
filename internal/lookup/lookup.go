package lookup

import (
	"fmt"
	"os"

	"ticker-bot/internal/api"
	"ticker-bot/internal/interfaces"
	"ticker-bot/internal/lookup/csvquote"
	"ticker-bot/internal/lookup/kite"
	"ticker-bot/internal/lookup/yahoo"
	"ticker-bot/internal/store"
)

// New builds the name lookup and price mover selected by lookup.provider.
// The CSV provider has no price data and borrows Yahoo for session moves.
func New(cfg *store.Config) (interfaces.NameLookup, interfaces.Mover, error) {
	switch cfg.Lookup.Provider {
	case "YAHOO":
		y := yahoo.New()
		return y, y, nil
	case "CSV":
		client := api.NewClient(api.WithTimeout(cfg.LookupTimeout()), api.WithLogging(true))
		return csvquote.New(client, cfg.Lookup.CSV.URL, cfg.Lookup.CSV.Format), yahoo.New(), nil
	case "KITE":
		k, err := kite.New(os.Getenv("KITE_API_KEY"), os.Getenv("KITE_ACCESS_TOKEN"), cfg.Lookup.Kite.Exchange)
		if err != nil {
			return nil, nil, err
		}
		return k, k, nil
	default:
		return nil, nil, fmt.Errorf("unknown lookup provider %q", cfg.Lookup.Provider)
	}
}

package content

import (
	"context"
	"fmt"

	"github.com/vertexpay/onramp-gateway/internal/config"
)

// EnsureProviders seeds the provider catalogue from cfg when the store holds
// no providers yet. A non-empty store is left untouched so admin edits survive
// restarts.
func EnsureProviders(ctx context.Context, store Store, cfg *config.ProvidersConfig) error {
	if cfg == nil || len(cfg.Providers) == 0 {
		return nil
	}

	existing, err := store.ListProviders(ctx)
	if err != nil {
		return fmt.Errorf("list providers: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for id, settings := range cfg.Providers {
		provider := Provider{
			ID:          id,
			Enabled:     settings.Enabled,
			DisplayName: settings.DisplayName,
			Description: settings.Description,
			SortOrder:   settings.SortOrder,
		}
		if _, err := store.UpsertProvider(ctx, provider); err != nil {
			return fmt.Errorf("seed provider %s: %w", id, err)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProviderSettings describes one onramp provider as shown to the front end.
type ProviderSettings struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	DisplayName string `yaml:"display_name" json:"displayName"`
	Description string `yaml:"description" json:"description,omitempty"`
	// SortOrder controls the order providers appear in on the buy page.
	SortOrder int `yaml:"sort_order" json:"sortOrder"`
}

// ProvidersConfig is the onramp provider catalogue.
type ProvidersConfig struct {
	Providers map[string]*ProviderSettings `yaml:"providers"`
}

// LoadProvidersConfig loads the provider catalogue from config/providers.yaml.
func LoadProvidersConfig() (*ProvidersConfig, error) {
	return LoadProvidersConfigFromPath(filepath.Join("config", "providers.yaml"))
}

// LoadProvidersConfigFromPath loads the provider catalogue from a specific path.
func LoadProvidersConfigFromPath(path string) (*ProvidersConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read providers config: %w", err)
	}

	var cfg ProvidersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse providers config: %w", err)
	}

	for id, settings := range cfg.Providers {
		if settings == nil {
			return nil, fmt.Errorf("provider %s: settings are required", id)
		}
		if settings.DisplayName == "" {
			return nil, fmt.Errorf("provider %s: display_name is required", id)
		}
	}

	return &cfg, nil
}

// LoadProvidersConfigOrDefault loads the provider catalogue or returns the
// built-in defaults if the file is not found.
func LoadProvidersConfigOrDefault() *ProvidersConfig {
	cfg, err := LoadProvidersConfig()
	if err != nil {
		return DefaultProvidersConfig()
	}
	return cfg
}

// DefaultProvidersConfig returns the default provider catalogue.
func DefaultProvidersConfig() *ProvidersConfig {
	return &ProvidersConfig{
		Providers: map[string]*ProviderSettings{
			"coinbase": {
				Enabled:     true,
				DisplayName: "Coinbase Onramp",
				Description: "Buy crypto with a Coinbase account or guest checkout",
				SortOrder:   1,
			},
			"stripe": {
				Enabled:     true,
				DisplayName: "Stripe",
				Description: "Card and bank purchases via Stripe crypto onramp",
				SortOrder:   2,
			},
			"moonpay": {
				Enabled:     true,
				DisplayName: "MoonPay",
				Description: "Signed MoonPay widget checkout",
				SortOrder:   3,
			},
		},
	}
}

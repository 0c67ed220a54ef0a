package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// fileConfig mirrors Config for YAML loading. Pointer fields distinguish
// "not set" from zero values so the file only overrides what it names.
type fileConfig struct {
	DefaultGridIntensity    *float64 `yaml:"defaultGridIntensity"`
	PUE                     *float64 `yaml:"pue"`
	EnableNetworkAccounting *bool    `yaml:"enableNetworkAccounting"`
	EnableStorageAccounting *bool    `yaml:"enableStorageAccounting"`

	GridAPIURL     *string `yaml:"gridApiUrl"`
	GridAPIKey     *string `yaml:"gridApiKey"`
	GridRegion     *string `yaml:"gridRegion"`
	GridCacheTTL   *string `yaml:"gridCacheTtl"`
	GridAPITimeout *string `yaml:"gridApiTimeout"`
	GridMaxRetries *int    `yaml:"gridMaxRetries"`

	PrometheusURL *string `yaml:"prometheusUrl"`
}

// LoadFile overlays settings from a YAML file onto the receiver. Keys absent
// from the file keep their current (default or environment) values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.DefaultGridIntensity != nil {
		c.DefaultGridIntensity = *fc.DefaultGridIntensity
	}
	if fc.PUE != nil {
		c.PUE = *fc.PUE
	}
	if fc.EnableNetworkAccounting != nil {
		c.EnableNetworkAccounting = *fc.EnableNetworkAccounting
	}
	if fc.EnableStorageAccounting != nil {
		c.EnableStorageAccounting = *fc.EnableStorageAccounting
	}
	if fc.GridAPIURL != nil {
		c.GridAPIURL = *fc.GridAPIURL
	}
	if fc.GridAPIKey != nil {
		c.GridAPIKey = *fc.GridAPIKey
	}
	if fc.GridRegion != nil {
		c.GridRegion = *fc.GridRegion
	}
	if fc.GridCacheTTL != nil {
		d, err := time.ParseDuration(*fc.GridCacheTTL)
		if err != nil {
			return fmt.Errorf("invalid gridCacheTtl: %w", err)
		}
		c.GridCacheTTL = d
	}
	if fc.GridAPITimeout != nil {
		d, err := time.ParseDuration(*fc.GridAPITimeout)
		if err != nil {
			return fmt.Errorf("invalid gridApiTimeout: %w", err)
		}
		c.GridAPITimeout = d
	}
	if fc.GridMaxRetries != nil {
		c.GridMaxRetries = *fc.GridMaxRetries
	}
	if fc.PrometheusURL != nil {
		c.PrometheusURL = *fc.PrometheusURL
	}

	return nil
}

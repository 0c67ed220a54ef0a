package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration. It is loaded once at startup and
// treated as read-only afterwards, so it can be shared across concurrent
// queries without locking.
type Config struct {
	// Carbon model
	DefaultGridIntensity    float64 // gCO2/kWh, used when no live value is available
	PUE                     float64 // Power Usage Effectiveness multiplier
	EnableNetworkAccounting bool    // reserved for a future network estimator
	EnableStorageAccounting bool    // reserved for a future storage estimator

	// Electricity Maps API (live grid intensity)
	GridAPIURL     string
	GridAPIKey     string
	GridRegion     string
	GridCacheTTL   time.Duration
	GridAPITimeout time.Duration
	GridMaxRetries int

	// Usage enrichment
	PrometheusURL string

	// Output
	OutputFormat string // text, json
	Verbose      bool
}

// NewConfig creates a new configuration with defaults, overridable through
// environment variables.
func NewConfig() *Config {
	return &Config{
		DefaultGridIntensity:    getEnvFloat("DEFAULT_GRID_INTENSITY", 475.0),
		PUE:                     getEnvFloat("CARBON_PUE", 1.5),
		EnableNetworkAccounting: getEnvBool("ENABLE_NETWORK_ACCOUNTING", false),
		EnableStorageAccounting: getEnvBool("ENABLE_STORAGE_ACCOUNTING", false),
		GridAPIURL:              getEnv("ELECTRICITY_MAPS_URL", "https://api.electricitymap.org/v3/carbon-intensity/latest?zone="),
		GridAPIKey:              getEnv("ELECTRICITY_MAPS_API_KEY", ""),
		GridRegion:              getEnv("GRID_REGION", ""),
		GridCacheTTL:            getEnvDuration("GRID_CACHE_TTL", 30*time.Minute),
		GridAPITimeout:          getEnvDuration("GRID_API_TIMEOUT", 10*time.Second),
		GridMaxRetries:          getEnvInt("GRID_MAX_RETRIES", 3),
		PrometheusURL:           getEnv("PROMETHEUS_URL", ""),
		OutputFormat:            "text",
		Verbose:                 false,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	if c.DefaultGridIntensity <= 0 {
		return fmt.Errorf("default grid intensity must be positive, got %.2f", c.DefaultGridIntensity)
	}
	if c.PUE < 1.0 {
		return fmt.Errorf("PUE must be >= 1.0, got %.2f", c.PUE)
	}
	if c.GridAPIKey != "" && c.GridCacheTTL <= 0 {
		return fmt.Errorf("grid cache TTL must be positive when the live intensity API is enabled")
	}
	if c.GridMaxRetries < 0 {
		return fmt.Errorf("grid max retries must be >= 0, got %d", c.GridMaxRetries)
	}
	return nil
}

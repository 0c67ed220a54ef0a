package gridintensity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"k8s.io/klog/v2"

	"github.com/opscart/k8s-carbon-estimator/pkg/config"
	"github.com/opscart/k8s-carbon-estimator/pkg/metrics"
)

// HTTPClient interface allows mocking http.Client in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// intensityResponse is the relevant part of the Electricity Maps payload.
type intensityResponse struct {
	CarbonIntensity float64 `json:"carbonIntensity"`
	Zone            string  `json:"zone"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ElectricityMapsProvider fetches live grid carbon intensity for a region.
// Lookup failure is never fatal: every failure path resolves to the
// configured default intensity with the reason recorded, so a query always
// produces an estimate.
type ElectricityMapsProvider struct {
	apiURL           string
	apiKey           string
	region           string
	defaultIntensity float64
	maxRetries       int
	httpClient       HTTPClient
	cache            *intensityCache
}

// Option allows customizing the provider.
type Option func(*ElectricityMapsProvider)

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client HTTPClient) Option {
	return func(p *ElectricityMapsProvider) {
		p.httpClient = client
	}
}

// NewElectricityMapsProvider creates a provider from configuration.
func NewElectricityMapsProvider(cfg *config.Config, opts ...Option) *ElectricityMapsProvider {
	p := &ElectricityMapsProvider{
		apiURL:           cfg.GridAPIURL,
		apiKey:           cfg.GridAPIKey,
		region:           cfg.GridRegion,
		defaultIntensity: cfg.DefaultGridIntensity,
		maxRetries:       cfg.GridMaxRetries,
		httpClient:       &http.Client{Timeout: cfg.GridAPITimeout},
		cache:            newIntensityCache(cfg.GridCacheTTL),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *ElectricityMapsProvider) Name() string {
	return "electricity-maps"
}

// GetGridIntensity returns the current intensity for the configured region,
// consulting the cache first. All failures degrade to the default intensity.
func (p *ElectricityMapsProvider) GetGridIntensity(ctx context.Context) (Resolution, error) {
	if p.region == "" {
		return p.fallback("no grid region configured"), nil
	}

	if intensity, fresh := p.cache.Get(p.region); fresh {
		klog.V(3).InfoS("Using cached grid intensity", "region", p.region, "intensity", intensity)
		return Resolution{Intensity: intensity}, nil
	}

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoffDuration(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return p.fallback(fmt.Sprintf("context cancelled during backoff: %v", ctx.Err())), nil
			case <-timer.C:
			}
		}

		intensity, err := p.doRequest(ctx, p.region)
		if err == nil {
			p.cache.Set(p.region, intensity)
			klog.V(2).InfoS("Fetched grid intensity", "region", p.region, "intensity", intensity)
			return Resolution{Intensity: intensity}, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return p.fallback(fmt.Sprintf("context cancelled: %v", ctx.Err())), nil
		}
		klog.V(2).InfoS("Grid intensity request failed, retrying",
			"region", p.region,
			"attempt", attempt+1,
			"maxRetries", p.maxRetries,
			"error", err)
	}

	return p.fallback(fmt.Sprintf("all retries failed: %v", lastErr)), nil
}

func (p *ElectricityMapsProvider) doRequest(ctx context.Context, region string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+region, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("auth-token", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload intensityResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	if payload.CarbonIntensity <= 0 {
		return 0, fmt.Errorf("API returned non-positive intensity %.2f for region %s", payload.CarbonIntensity, region)
	}

	return payload.CarbonIntensity, nil
}

func (p *ElectricityMapsProvider) fallback(reason string) Resolution {
	metrics.GridIntensityFallbacks.Inc()
	klog.V(2).InfoS("Grid intensity lookup degraded to default",
		"region", p.region,
		"default", p.defaultIntensity,
		"reason", reason)
	return Resolution{
		Intensity: p.defaultIntensity,
		Fallback:  true,
		Reason:    reason,
	}
}

func backoffDuration(attempt int) time.Duration {
	d := 250 * time.Millisecond << uint(attempt-1)
	if d > 5*time.Second {
		return 5 * time.Second
	}
	return d
}

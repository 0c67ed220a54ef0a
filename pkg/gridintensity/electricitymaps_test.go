package gridintensity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/k8s-carbon-estimator/pkg/config"
)

func testConfig(url string) *config.Config {
	cfg := config.NewConfig()
	cfg.GridAPIURL = url + "?zone="
	cfg.GridAPIKey = "test-token"
	cfg.GridRegion = "DE"
	cfg.DefaultGridIntensity = 475
	cfg.GridMaxRetries = 1
	cfg.GridCacheTTL = time.Minute
	return cfg
}

func TestElectricityMapsSuccess(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "test-token", r.Header.Get("auth-token"))
		w.Write([]byte(`{"zone":"DE","carbonIntensity":312.4,"updatedAt":"2025-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	provider := NewElectricityMapsProvider(testConfig(server.URL))

	res, err := provider.GetGridIntensity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 312.4, res.Intensity)
	assert.False(t, res.Fallback)
	assert.Empty(t, res.Reason)

	// Second lookup is served from cache
	res, err = provider.GetGridIntensity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 312.4, res.Intensity)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestElectricityMapsServerErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewElectricityMapsProvider(testConfig(server.URL))

	res, err := provider.GetGridIntensity(context.Background())
	require.NoError(t, err, "lookup failure must never surface as an error")
	assert.Equal(t, 475.0, res.Intensity)
	assert.True(t, res.Fallback)
	assert.Contains(t, res.Reason, "all retries failed")
}

func TestElectricityMapsBadPayloadFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"zone":"DE","carbonIntensity":0}`))
	}))
	defer server.Close()

	provider := NewElectricityMapsProvider(testConfig(server.URL))

	res, err := provider.GetGridIntensity(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 475.0, res.Intensity)
}

func TestElectricityMapsCancelledContextFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"carbonIntensity":300}`))
	}))
	defer server.Close()

	provider := NewElectricityMapsProvider(testConfig(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := provider.GetGridIntensity(ctx)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 475.0, res.Intensity)
}

func TestElectricityMapsNoRegionFallsBack(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.GridRegion = ""
	provider := NewElectricityMapsProvider(cfg)

	res, err := provider.GetGridIntensity(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "no grid region configured", res.Reason)
}

func TestStaticProvider(t *testing.T) {
	provider := NewStaticProvider(250)

	res, err := provider.GetGridIntensity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250.0, res.Intensity)
	assert.False(t, res.Fallback)
}

func TestIntensityCacheExpiry(t *testing.T) {
	cache := newIntensityCache(10 * time.Millisecond)
	cache.Set("DE", 300)

	v, ok := cache.Get("DE")
	require.True(t, ok)
	assert.Equal(t, 300.0, v)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get("DE")
	assert.False(t, ok, "entry should have expired")
}

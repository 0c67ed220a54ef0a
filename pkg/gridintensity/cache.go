package gridintensity

import (
	"sync"
	"time"
)

// intensityCache caches intensity lookups per region to reduce API calls.
type intensityCache struct {
	data  map[string]*cacheEntry
	ttl   time.Duration
	mutex sync.RWMutex
}

type cacheEntry struct {
	intensity float64
	expiresAt time.Time
}

func newIntensityCache(ttl time.Duration) *intensityCache {
	return &intensityCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *intensityCache) Get(region string) (float64, bool) {
	c.mutex.RLock()
	entry, exists := c.data[region]
	c.mutex.RUnlock()
	if !exists {
		return 0, false
	}

	if time.Now().After(entry.expiresAt) {
		c.mutex.Lock()
		delete(c.data, region)
		c.mutex.Unlock()
		return 0, false
	}

	return entry.intensity, true
}

func (c *intensityCache) Set(region string, intensity float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[region] = &cacheEntry{
		intensity: intensity,
		expiresAt: time.Now().Add(c.ttl),
	}
}

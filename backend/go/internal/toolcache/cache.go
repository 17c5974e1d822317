// Package toolcache holds the process-wide, time-bounded cache of discovered
// tool listings, keyed by tool-server endpoint URL.
package toolcache

import (
	"sync"
	"time"

	"Aivatar/backend/go/internal/models"
)

// DefaultTTL bounds how long a discovered tool list is reused.
const DefaultTTL = time.Hour

// Cache is the injected cache abstraction. Get reports a miss for absent or
// expired entries; Set stores a fresh listing. Refresh races are harmless:
// last writer wins.
type Cache interface {
	Get(endpoint string) ([]models.ToolDescriptor, bool)
	Set(endpoint string, tools []models.ToolDescriptor)
}

type memoryEntry struct {
	tools     []models.ToolDescriptor
	expiresAt time.Time
}

// MemoryCache is an in-process Cache backed by a map.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache. A non-positive ttl falls back to
// DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached listing for endpoint if present and unexpired.
func (c *MemoryCache) Get(endpoint string) ([]models.ToolDescriptor, bool) {
	c.mu.RLock()
	entry, ok := c.entries[endpoint]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.tools, true
}

// Set stores a fresh listing for endpoint.
func (c *MemoryCache) Set(endpoint string, tools []models.ToolDescriptor) {
	c.mu.Lock()
	c.entries[endpoint] = memoryEntry{tools: tools, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

package toolcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/pkg/logger"
)

var sampleTools = []models.ToolDescriptor{{Name: "get_forecast"}}

func TestMemoryCacheHitWithinTTL(t *testing.T) {
	current := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Hour)
	cache.now = func() time.Time { return current }

	cache.Set("http://a", sampleTools)

	current = current.Add(59 * time.Minute)
	tools, ok := cache.Get("http://a")
	require.True(t, ok)
	assert.Equal(t, sampleTools, tools)
}

func TestMemoryCacheExpiry(t *testing.T) {
	current := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Hour)
	cache.now = func() time.Time { return current }

	cache.Set("http://a", sampleTools)

	current = current.Add(61 * time.Minute)
	_, ok := cache.Get("http://a")
	assert.False(t, ok)
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	_, ok := cache.Get("http://unknown")
	assert.False(t, ok)
}

func TestDiscoveryUsesCache(t *testing.T) {
	calls := 0
	discover := func(context.Context, string, map[string]string) ([]models.ToolDescriptor, error) {
		calls++
		return sampleTools, nil
	}
	d := NewDiscovery(NewMemoryCache(time.Hour), discover, logger.New("test", "", ""))

	first := d.Tools(context.Background(), "http://a", nil)
	second := d.Tools(context.Background(), "http://a", nil)

	assert.Equal(t, sampleTools, first)
	assert.Equal(t, sampleTools, second)
	assert.Equal(t, 1, calls)
}

func TestDiscoveryRefreshesAfterExpiry(t *testing.T) {
	current := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Hour)
	cache.now = func() time.Time { return current }

	calls := 0
	discover := func(context.Context, string, map[string]string) ([]models.ToolDescriptor, error) {
		calls++
		return sampleTools, nil
	}
	d := NewDiscovery(cache, discover, logger.New("test", "", ""))

	d.Tools(context.Background(), "http://a", nil)
	current = current.Add(2 * time.Hour)
	d.Tools(context.Background(), "http://a", nil)

	assert.Equal(t, 2, calls)
}

func TestDiscoveryFailureNotCached(t *testing.T) {
	calls := 0
	discover := func(context.Context, string, map[string]string) ([]models.ToolDescriptor, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return sampleTools, nil
	}
	d := NewDiscovery(NewMemoryCache(time.Hour), discover, logger.New("test", "", ""))

	first := d.Tools(context.Background(), "http://a", nil)
	assert.Empty(t, first)

	// The failure is not cached, so the next lookup retries and succeeds.
	second := d.Tools(context.Background(), "http://a", nil)
	assert.Equal(t, sampleTools, second)
	assert.Equal(t, 2, calls)
}

func TestDiscoveryPerEndpointEntries(t *testing.T) {
	discover := func(_ context.Context, endpoint string, _ map[string]string) ([]models.ToolDescriptor, error) {
		return []models.ToolDescriptor{{Name: endpoint}}, nil
	}
	d := NewDiscovery(NewMemoryCache(time.Hour), discover, logger.New("test", "", ""))

	a := d.Tools(context.Background(), "http://a", nil)
	b := d.Tools(context.Background(), "http://b", nil)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].Name, b[0].Name)
}

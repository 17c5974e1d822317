package toolcache

import (
	"context"

	"Aivatar/backend/go/internal/models"
	"Aivatar/backend/go/pkg/logger"
)

// DiscoverFunc fetches the live tool listing from one endpoint.
type DiscoverFunc func(ctx context.Context, endpoint string, headers map[string]string) ([]models.ToolDescriptor, error)

// Discovery combines a Cache with a live discovery call. Lookups inside the
// TTL never touch the network; failed refreshes yield an empty listing and
// are not cached, so the next request retries discovery.
type Discovery struct {
	cache    Cache
	discover DiscoverFunc
	log      *logger.Logger
}

// NewDiscovery creates a Discovery around cache and discover.
func NewDiscovery(cache Cache, discover DiscoverFunc, log *logger.Logger) *Discovery {
	return &Discovery{cache: cache, discover: discover, log: log}
}

// Tools returns the tool listing for endpoint. It never returns an error: a
// failed discovery degrades to an empty listing.
func (d *Discovery) Tools(ctx context.Context, endpoint string, headers map[string]string) []models.ToolDescriptor {
	if tools, ok := d.cache.Get(endpoint); ok {
		return tools
	}

	tools, err := d.discover(ctx, endpoint, headers)
	if err != nil {
		d.log.WithError(err).WithField("endpoint", endpoint).Warn("tool discovery failed")
		return nil
	}

	d.cache.Set(endpoint, tools)
	return tools
}

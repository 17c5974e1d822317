package toolcache

import (
	"context"
	"encoding/json"
	"time"

	"Aivatar/backend/go/internal/models"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "toolcache:"

// RedisCache is a Cache backed by Redis, letting multiple instances share
// one discovery cache. Expiry is delegated to the Redis key TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache. A non-positive ttl falls back to
// DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached listing for endpoint if the key is still live.
// Transport or decode failures read as cache misses.
func (c *RedisCache) Get(endpoint string) ([]models.ToolDescriptor, bool) {
	raw, err := c.client.Get(context.Background(), redisKeyPrefix+endpoint).Bytes()
	if err != nil {
		return nil, false
	}
	var tools []models.ToolDescriptor
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, false
	}
	return tools, true
}

// Set stores a fresh listing for endpoint with the configured TTL.
func (c *RedisCache) Set(endpoint string, tools []models.ToolDescriptor) {
	raw, err := json.Marshal(tools)
	if err != nil {
		return
	}
	c.client.Set(context.Background(), redisKeyPrefix+endpoint, raw, c.ttl)
}

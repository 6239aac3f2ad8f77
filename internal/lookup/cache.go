package lookup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/common/metrics"
)

// Cache is a read-through Redis cache for static catalog fetches. A cache
// failure is never an error: reads fall through to the remote service and
// writes are best-effort.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Cache{client: client, ttl: ttl, logger: log}
}

func (c *Cache) Get(ctx context.Context, key string) ([]map[string]interface{}, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Catalog cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}

	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("Catalog cache entry corrupt, ignoring", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("hit").Inc()
	return items, true
}

func (c *Cache) Set(ctx context.Context, key string, items []map[string]interface{}) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

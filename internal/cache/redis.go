// Package cache is a Redis-backed result cache for aggregation
// responses, so repeated dashboard loads skip the upstream fan-out.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/heyreach"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// ResultCache stores aggregation results with a TTL. A nil or
// unreachable Redis degrades to cache misses, never errors.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a result cache from configuration.
func New(cfg config.CacheConfig) *ResultCache {
	return &ResultCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
		ttl:    cfg.TTL(),
	}
}

// NewWithClient wraps an existing Redis client.
func NewWithClient(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Key builds the cache key for one aggregation request. An empty
// sender filter means all senders.
func Key(senderFilter, startDate, endDate string) string {
	if senderFilter == "" {
		senderFilter = "all"
	}
	return fmt.Sprintf("performance:%s:%s:%s", senderFilter, startDate, endDate)
}

// Get returns the cached result for key, or false on a miss. Transport
// and decode failures count as misses.
func (c *ResultCache) Get(ctx context.Context, key string) (*heyreach.AggregationResult, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cache: get failed", "key", key, "error", err.Error())
		}
		return nil, false
	}

	var result heyreach.AggregationResult
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warn("cache: stale entry, dropping", "key", key, "error", err.Error())
		c.client.Del(ctx, key)
		return nil, false
	}
	return &result, true
}

// Set stores a result under key for the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, result *heyreach.AggregationResult) {
	if c == nil || c.client == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("cache: encode failed", "key", key, "error", err.Error())
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("cache: set failed", "key", key, "error", err.Error())
	}
}

// Ping checks Redis connectivity.
func (c *ResultCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("cache: no redis client")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *ResultCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

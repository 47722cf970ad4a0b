// Package cache provides a Redis backed cache for diet metrics.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dailydiet/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dailydiet:metrics:"

// RedisMetricsCache stores DietMetrics as JSON in Redis with a TTL.
type RedisMetricsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisMetricsCache creates a cache on top of an existing client.
func NewRedisMetricsCache(rdb *redis.Client, ttl time.Duration) *RedisMetricsCache {
	return &RedisMetricsCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached metrics for userID, if any.
func (c *RedisMetricsCache) Get(ctx context.Context, userID string) (*models.DietMetrics, bool, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	var metrics models.DietMetrics
	if err := json.Unmarshal([]byte(val), &metrics); err != nil {
		return nil, false, err
	}
	return &metrics, true, nil
}

// Set stores metrics for userID.
func (c *RedisMetricsCache) Set(ctx context.Context, userID string, metrics *models.DietMetrics) error {
	b, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+userID, b, c.ttl).Err()
}

// Invalidate drops the cached metrics for userID.
func (c *RedisMetricsCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, keyPrefix+userID).Err()
}

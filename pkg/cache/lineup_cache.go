package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-solver/internal/optimizer"
)

// LineupCacheService handles caching for solved lineups
type LineupCacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewLineupCacheService creates a new lineup cache service
func NewLineupCacheService(client *redis.Client, logger *logrus.Logger) *LineupCacheService {
	return &LineupCacheService{
		client: client,
		logger: logger,
	}
}

// SetLineupResult stores a solved lineup in cache
func (c *LineupCacheService) SetLineupResult(ctx context.Context, key string, result *optimizer.LineupResult, expiration time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal lineup result: %w", err)
	}

	fullKey := fmt.Sprintf("lineup:%s", key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set lineup result in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"expiration": expiration,
		"status":     result.Status,
	}).Debug("Cached lineup result")

	return nil
}

// GetLineupResult retrieves a solved lineup from cache
func (c *LineupCacheService) GetLineupResult(ctx context.Context, key string) (*optimizer.LineupResult, error) {
	fullKey := fmt.Sprintf("lineup:%s", key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("lineup result not found in cache")
		}
		return nil, fmt.Errorf("failed to get lineup result from cache: %w", err)
	}

	var result optimizer.LineupResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lineup result: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key": fullKey,
		"status":    result.Status,
	}).Debug("Retrieved lineup result from cache")

	return &result, nil
}

// DeleteLineupResult removes a solved lineup from cache
func (c *LineupCacheService) DeleteLineupResult(ctx context.Context, key string) error {
	fullKey := fmt.Sprintf("lineup:%s", key)
	if err := c.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("failed to delete lineup result from cache: %w", err)
	}

	c.logger.WithField("cache_key", fullKey).Debug("Deleted lineup result from cache")
	return nil
}

// GetStatus returns cache statistics
func (c *LineupCacheService) GetStatus(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service":   "lineup-cache",
		"timestamp": time.Now(),
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		status["connected"] = false
		return status
	}
	status["connected"] = true

	if dbSize := c.client.DBSize(ctx); dbSize.Err() == nil {
		status["db_size"] = dbSize.Val()
	}

	if keys, err := c.client.Keys(ctx, "lineup:*").Result(); err == nil {
		status["lineup_keys"] = len(keys)
	}

	return status
}

// FlushLineupCache clears all solved lineups from cache
func (c *LineupCacheService) FlushLineupCache(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, "lineup:*").Result()
	if err != nil {
		return fmt.Errorf("failed to get lineup keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete lineup keys: %w", err)
		}
	}

	c.logger.WithField("deleted_keys", len(keys)).Info("Flushed lineup cache")
	return nil
}

// SetWithRetry attempts to set a cache entry with retries
func (c *LineupCacheService) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration, maxRetries int) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
			lastErr = err
			c.logger.WithError(err).WithField("attempt", i+1).Warn("Cache set attempt failed")
			time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
			continue
		}
		return nil
	}

	return fmt.Errorf("failed to set cache after %d retries: %w", maxRetries, lastErr)
}

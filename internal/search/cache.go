// Package search runs coach searches: it queries candidates, ranks them,
// widens the search scope when results are thin, and caches ranked pages.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a ranked result page may be served from
// cache. Engagement counters drift slowly, so short staleness is invisible
// to searchers.
const DefaultCacheTTL = 60 * time.Second

// cacheKeyPrefix namespaces search cache entries in Redis.
const cacheKeyPrefix = "search:coaches:"

// Cache stores ranked result pages keyed by query.
type Cache interface {
	// Get returns the cached result for the key, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) (*Result, error)

	// Set stores the result under the key.
	Set(ctx context.Context, key string, res *Result) error
}

// RedisCache implements Cache on Redis with CBOR-encoded values.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a RedisCache with the given TTL.
// A non-positive TTL falls back to DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached result for the key, or (nil, nil) on a miss.
// Undecodable entries are treated as misses.
func (c *RedisCache) Get(ctx context.Context, key string) (*Result, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var res Result
	if err := cbor.Unmarshal(data, &res); err != nil {
		c.logger.Warn("discarding undecodable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, nil
	}
	return &res, nil
}

// Set stores the result under the key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, res *Result) error {
	data, err := cbor.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// CacheKey derives a deterministic cache key from a query. Location tokens
// are lowercased so equivalent queries share an entry.
func CacheKey(q Query) string {
	parts := []string{
		q.Location.City,
		q.Location.Region,
		q.Location.County,
		q.Location.Country,
		q.Location.CountryCode,
		q.CoachType,
		fmt.Sprintf("%d", q.Limit),
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return cacheKeyPrefix + strings.Join(parts, "|")
}

// Package cache provides a Redis-backed read-through cache for the query
// API, grounded on the teacher's adapter/redis.VisitedRepoImpl: a thin
// struct wrapping *redis.Client, one hashed key per cached item, SetEX for
// expiry.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client for read-through caching of query responses.
type Cache struct {
	client *redis.Client
}

// New constructs a Cache against the given Redis client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Key builds a deterministic cache key from a prefix and a set of query
// parameters, independent of parameter ordering: the params are marshaled
// to JSON with lexicographically sorted keys, then hashed, so two requests
// with the same filters in a different order share a cache entry.
func Key(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([][2]string, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, [2]string{k, params[k]})
	}

	encoded, _ := json.Marshal(ordered)
	sum := md5.Sum(encoded)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached bytes under key if present, otherwise
// calls fn, caches its result for ttl, and returns it. A Redis error on
// either path is treated as a cache miss: the query API must keep serving
// requests even if the cache is unreachable.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, bool, error) {
	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return cached, true, nil
	}
	if err != redis.Nil {
		slog.Warn("cache: backing store error, failing open", "error", err)
	}

	value, err := fn()
	if err != nil {
		return nil, false, err
	}

	if err := c.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("cache: backing store error, failing open", "error", err)
		return value, false, nil
	}

	return value, false, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"

	"workrank/internal/platform/cache"
)

// cacheClient is the subset of the cache platform used here.
type cacheClient interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RankingCache stores the latest leaderboard payload per period type as
// snappy-compressed JSON. The recalculation orchestrator invalidates a
// period's entry after committing a new snapshot; the TTL is only a
// safety net against missed invalidations.
type RankingCache struct {
	client cacheClient
	ttl    time.Duration
}

// NewRankingCache builds a ranking cache (default TTL 10m when ttl<=0).
func NewRankingCache(client cacheClient, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RankingCache{client: client, ttl: ttl}
}

func rankingKey(periodType string) string {
	return "rankings:latest:" + periodType
}

// Get fetches and decodes the cached payload for a period type.
func (c *RankingCache) Get(ctx context.Context, periodType string, out any) (bool, error) {
	payload, err := c.client.GetBytes(ctx, rankingKey(periodType))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return false, nil
		}
		return false, err
	}
	jsonData, err := snappy.Decode(nil, payload)
	if err != nil {
		return false, fmt.Errorf("snappy decode: %w", err)
	}
	if err := json.Unmarshal(jsonData, out); err != nil {
		return false, fmt.Errorf("json decode: %w", err)
	}
	return true, nil
}

// Set encodes and stores the payload for a period type.
func (c *RankingCache) Set(ctx context.Context, periodType string, value any) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return c.client.Set(ctx, rankingKey(periodType), snappy.Encode(nil, jsonData), c.ttl)
}

// Invalidate drops the cached payload for a period type.
func (c *RankingCache) Invalidate(ctx context.Context, periodType string) error {
	return c.client.Delete(ctx, rankingKey(periodType))
}

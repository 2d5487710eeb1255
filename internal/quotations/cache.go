package quotations

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsCacheKey = "quotations:stats"

// StatsCache keeps the dashboard overview in Redis for a short while so the
// front end can poll it cheaply.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache instantiates the cache helper.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Fetch loads the cached overview or populates it using the loader.
func (c *StatsCache) Fetch(ctx context.Context, loader func(context.Context) (StatsOverview, error)) (StatsOverview, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, statsCacheKey).Bytes()
	if err == nil {
		var stats StatsOverview
		if err := json.Unmarshal(payload, &stats); err == nil {
			return stats, nil
		}
	} else if err != redis.Nil {
		return StatsOverview{}, err
	}

	stats, err := loader(ctx)
	if err != nil {
		return StatsOverview{}, err
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return stats, err
	}
	if err := c.client.Set(ctx, statsCacheKey, raw, c.ttl).Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// Invalidate drops the cached overview after a mutation.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, statsCacheKey).Err()
}

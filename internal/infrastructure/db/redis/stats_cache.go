package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

const dashboardStatsKey = "dashboard:stats"

// StatsCache keeps the dashboard aggregate as a JSON value with a TTL.
type StatsCache struct {
	client redis.UniversalClient
	key    string
}

// NewStatsCache creates a StatsCache. prefix namespaces the key when several
// deployments share one Redis.
func NewStatsCache(client redis.UniversalClient, prefix string) *StatsCache {
	key := dashboardStatsKey
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &StatsCache{client: client, key: key}
}

func (c *StatsCache) Get(ctx context.Context) (*ports.DashboardStats, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stats cache get: %w", err)
	}

	var stats ports.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// A value we cannot read is treated as a miss and dropped.
		_ = c.client.Del(ctx, c.key).Err()
		return nil, false, nil
	}
	return &stats, true, nil
}

func (c *StatsCache) Set(ctx context.Context, stats *ports.DashboardStats, ttl time.Duration) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("stats cache set: %w", err)
	}
	return nil
}

func (c *StatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("stats cache invalidate: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

func newTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatsCache(client, "test"), mr
}

func sampleStats() *ports.DashboardStats {
	return &ports.DashboardStats{
		Customers: domain.CustomerStats{Total: 4, Active: 3, Inactive: 1, NewThisMonth: 2},
		Summary: ports.DashboardSummary{
			TotalCustomers: 4, ActiveCustomers: 3, NewCustomersThisMonth: 2, InactiveCustomers: 1,
		},
		Message:     "There are no dashboards to display.",
		GeneratedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func TestStatsCache_MissThenHit(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, sampleStats(), time.Minute))

	got, ok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sampleStats(), got)
}

func TestStatsCache_Expires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleStats(), 30*time.Second))
	assert.True(t, mr.Exists("test:dashboard:stats"))

	mr.FastForward(31 * time.Second)

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatsCache_Invalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleStats(), time.Minute))
	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists("test:dashboard:stats"))
}

func TestStatsCache_CorruptValueIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:dashboard:stats", "{not json"))

	_, ok, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("test:dashboard:stats"))
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

const (
	dashboardMessage    = "There are no dashboards to display."
	defaultDashboardTTL = 30 * time.Second
)

// CustomerStatsSource supplies the numbers the dashboard is built from.
type CustomerStatsSource interface {
	Stats(ctx context.Context) (*domain.CustomerStats, error)
}

// DashboardService builds the dashboard aggregate, serving it from the cache
// while fresh.
type DashboardService struct {
	customers CustomerStatsSource
	cache     ports.StatsCache
	ttl       time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewDashboardService(customers CustomerStatsSource, cache ports.StatsCache, ttl time.Duration, log zerolog.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}
	return &DashboardService{customers: customers, cache: cache, ttl: ttl, log: log, now: time.Now}
}

func (s *DashboardService) Stats(ctx context.Context) (*ports.DashboardStats, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("dashboard cache read failed, recomputing")
		} else if ok {
			return cached, nil
		}
	}

	cs, err := s.customers.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	stats := &ports.DashboardStats{
		Customers: *cs,
		Summary: ports.DashboardSummary{
			TotalCustomers:        cs.Total,
			ActiveCustomers:       cs.Active,
			NewCustomersThisMonth: cs.NewThisMonth,
			InactiveCustomers:     cs.Inactive,
		},
		Message:     dashboardMessage,
		GeneratedAt: s.now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats, s.ttl); err != nil {
			s.log.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}
	return stats, nil
}

func (s *DashboardService) Welcome(_ context.Context) ports.Welcome {
	return ports.Welcome{Message: dashboardMessage, Timestamp: s.now().UTC()}
}

package ports

import (
	"context"
	"time"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
)

// DashboardSummary is the headline block shown on the dashboard.
type DashboardSummary struct {
	TotalCustomers        int64 `json:"totalCustomers"`
	ActiveCustomers       int64 `json:"activeCustomers"`
	NewCustomersThisMonth int64 `json:"newCustomersThisMonth"`
	InactiveCustomers     int64 `json:"inactiveCustomers"`
}

// DashboardStats is cached as JSON, hence the tags.
type DashboardStats struct {
	Customers   domain.CustomerStats `json:"customers"`
	Summary     DashboardSummary     `json:"summary"`
	Message     string               `json:"message"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// Welcome is the static greeting returned by the dashboard.
type Welcome struct {
	Message   string
	Timestamp time.Time
}

// StatsCache stores the dashboard aggregate between recomputations.
type StatsCache interface {
	// Get reports (nil, false, nil) on a miss.
	Get(ctx context.Context) (*DashboardStats, bool, error)
	Set(ctx context.Context, stats *DashboardStats, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	Welcome(ctx context.Context) Welcome
}

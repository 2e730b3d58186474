package ports

import (
	"context"
	"time"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
)

// CustomerFilter carries the query parameters for listing customers.
type CustomerFilter struct {
	Search    string // optional: partial match on first/last name, email or phone
	CreatedBy string // optional: restrict to records created by one identity
	Page      int
	Limit     int
}

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]*domain.Customer, int64, error)
	// Stats counts customers; NewThisMonth counts rows created at or after since.
	Stats(ctx context.Context, since time.Time) (*domain.CustomerStats, error)
}

package ports

import (
	"context"
	"time"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
)

// IdentityFilter carries the query parameters for listing identities.
type IdentityFilter struct {
	Search string      // optional: case-insensitive match on username, email, first or last name
	Role   domain.Role // optional
	Status domain.Status
	Page   int // 1-based
	Limit  int // capped at 100 by the service
}

// IdentityCount narrows Count to a role and/or status. Zero values match all.
type IdentityCount struct {
	Role   domain.Role
	Status domain.Status
}

// RoleCount is one row of the role distribution.
type RoleCount struct {
	Role  domain.Role `db:"role" json:"role"`
	Count int64       `db:"count" json:"count"`
}

// IdentityRepository defines persistence operations for identities.
// Missing rows are reported as domain.ErrIdentityNotFound and unique
// violations as domain.ErrIdentityExists.
type IdentityRepository interface {
	// Create inserts u and fills in its ID and timestamps.
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindActiveByUsername matches only identities whose status is active.
	FindActiveByUsername(ctx context.Context, username string) (*domain.User, error)
	// ExistsByUsernameOrEmail runs a single disjunctive lookup. Empty
	// arguments are left out of the disjunction; a non-empty excludeID is
	// never counted as a match.
	ExistsByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error)
	Count(ctx context.Context, by IdentityCount) (int64, error)
	RoleDistribution(ctx context.Context) ([]RoleCount, error)
	List(ctx context.Context, filter IdentityFilter) ([]*domain.User, int64, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

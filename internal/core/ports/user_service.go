package ports

import (
	"context"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
)

// ListUsersInput carries all parameters for the user list endpoint.
type ListUsersInput struct {
	Search string
	Role   string
	Status string
	Page   int
	Limit  int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ListUsersResult is returned by UserService.List.
type ListUsersResult struct {
	Items      []*domain.Identity
	Pagination Pagination
}

// UserDetail is an identity with the customers it created most recently.
type UserDetail struct {
	Identity        *domain.Identity
	RecentCustomers []*domain.Customer
}

// CreateUserInput carries an administrative user creation.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role   // empty defaults to user
	Status    domain.Status // empty defaults to active
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Role      *domain.Role
	Status    *domain.Status
}

// ChangePasswordInput carries a password change for identity ID.
type ChangePasswordInput struct {
	ID              string
	CurrentPassword string
	NewPassword     string
}

// UserStats summarises the identity population.
type UserStats struct {
	Total            int64
	Active           int64
	Admins           int64
	Brokers          int64
	RoleDistribution []RoleCount
}

type UserService interface {
	List(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
	Stats(ctx context.Context) (*UserStats, error)
	Get(ctx context.Context, id string) (*UserDetail, error)
	Create(ctx context.Context, in CreateUserInput) (*AuthOutcome, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.Identity, error)
	ChangePassword(ctx context.Context, actor domain.Principal, in ChangePasswordInput) error
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Identity, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Identity, error)
	Deactivate(ctx context.Context, id string) error
}

package ports

import (
	"context"
	"time"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
)

// CustomerInput carries the fields of a new customer.
type CustomerInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     string
	DateOfBirth *time.Time
	Occupation  string
}

// UpdateCustomerInput is a partial update; nil fields are left unchanged.
type UpdateCustomerInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Address     *string
	DateOfBirth *time.Time
	Occupation  *string
	Status      *domain.CustomerStatus
}

// ListCustomersInput carries all parameters for the customer list endpoint.
type ListCustomersInput struct {
	Search string
	Page   int
	Limit  int
}

// ListCustomersResult is returned by CustomerService.List.
type ListCustomersResult struct {
	Items      []*domain.Customer
	Pagination Pagination
}

type CustomerService interface {
	Create(ctx context.Context, in CustomerInput, actor domain.Principal) (*domain.Customer, error)
	List(ctx context.Context, in ListCustomersInput) (*ListCustomersResult, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	Update(ctx context.Context, id string, in UpdateCustomerInput) (*domain.Customer, error)
	Deactivate(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.CustomerStats, error)
}

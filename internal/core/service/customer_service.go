package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

// CustomerService implements customer record management. Every write drops
// the cached dashboard aggregate.
type CustomerService struct {
	repo  ports.CustomerRepository
	cache ports.StatsCache
	log   zerolog.Logger
	now   func() time.Time
}

func NewCustomerService(repo ports.CustomerRepository, cache ports.StatsCache, log zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, cache: cache, log: log, now: time.Now}
}

func (s *CustomerService) Create(ctx context.Context, in ports.CustomerInput, actor domain.Principal) (*domain.Customer, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: first name, last name and email are required", domain.ErrInvalidInput)
	}

	c := &domain.Customer{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		DateOfBirth: in.DateOfBirth,
		Occupation:  in.Occupation,
		Status:      domain.CustomerActive,
	}
	if actor.ID != "" {
		createdBy := actor.ID
		c.CreatedBy = &createdBy
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.log.Error().Err(err).Str("email", in.Email).Msg("failed to create customer")
		return nil, err
	}
	s.invalidate(ctx)

	s.log.Info().Str("id", c.ID).Str("created_by", actor.Username).Msg("customer created")
	return c, nil
}

func (s *CustomerService) List(ctx context.Context, in ports.ListCustomersInput) (*ports.ListCustomersResult, error) {
	page, limit := pageBounds(in.Page, in.Limit)
	items, total, err := s.repo.List(ctx, ports.CustomerFilter{Search: in.Search, Page: page, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return &ports.ListCustomersResult{Items: items, Pagination: newPagination(total, page, limit)}, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CustomerService) Update(ctx context.Context, id string, in ports.UpdateCustomerInput) (*domain.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.PhoneNumber != nil {
		c.PhoneNumber = *in.PhoneNumber
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.DateOfBirth != nil {
		c.DateOfBirth = in.DateOfBirth
	}
	if in.Occupation != nil {
		c.Occupation = *in.Occupation
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown customer status %q", domain.ErrInvalidInput, *in.Status)
		}
		c.Status = *in.Status
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

// Deactivate marks the customer inactive; records are never removed.
func (s *CustomerService) Deactivate(ctx context.Context, id string) error {
	inactive := domain.CustomerInactive
	if _, err := s.Update(ctx, id, ports.UpdateCustomerInput{Status: &inactive}); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("customer deactivated")
	return nil
}

func (s *CustomerService) Stats(ctx context.Context) (*domain.CustomerStats, error) {
	stats, err := s.repo.Stats(ctx, monthStart(s.now()))
	if err != nil {
		return nil, fmt.Errorf("customer stats: %w", err)
	}
	return stats, nil
}

func (s *CustomerService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

// monthStart returns midnight UTC on the first day of t's month.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

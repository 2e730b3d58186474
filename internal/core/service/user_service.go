package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

const recentCustomersLimit = 5

// UserService implements identity administration.
type UserService struct {
	repo      ports.IdentityRepository
	customers ports.CustomerRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenIssuer
	audit     ports.AuditRecorder
	log       zerolog.Logger
	now       func() time.Time
}

func NewUserService(
	repo ports.IdentityRepository,
	customers ports.CustomerRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *UserService {
	if audit == nil {
		audit = discardRecorder{}
	}
	return &UserService{
		repo:      NewHashingIdentityRepository(repo, hasher),
		customers: customers,
		hasher:    hasher,
		tokens:    tokens,
		audit:     audit,
		log:       log,
		now:       time.Now,
	}
}

func (s *UserService) List(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
	role := domain.Role(in.Role)
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}
	status := domain.Status(in.Status)
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
	}

	page, limit := pageBounds(in.Page, in.Limit)
	users, total, err := s.repo.List(ctx, ports.IdentityFilter{
		Search: in.Search,
		Role:   role,
		Status: status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	items := make([]*domain.Identity, 0, len(users))
	for _, u := range users {
		items = append(items, u.Sanitize())
	}
	return &ports.ListUsersResult{Items: items, Pagination: newPagination(total, page, limit)}, nil
}

func (s *UserService) Stats(ctx context.Context) (*ports.UserStats, error) {
	var (
		stats ports.UserStats
		err   error
	)
	if stats.Total, err = s.repo.Count(ctx, ports.IdentityCount{}); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	if stats.Active, err = s.repo.Count(ctx, ports.IdentityCount{Status: domain.StatusActive}); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	if stats.Admins, err = s.repo.Count(ctx, ports.IdentityCount{Role: domain.RoleAdmin}); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	if stats.Brokers, err = s.repo.Count(ctx, ports.IdentityCount{Role: domain.RoleBroker}); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	if stats.RoleDistribution, err = s.repo.RoleDistribution(ctx); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &stats, nil
}

// Get returns the identity together with the customers it created last.
func (s *UserService) Get(ctx context.Context, id string) (*ports.UserDetail, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ports.UserDetail{Identity: u.Sanitize()}
	if s.customers != nil {
		recent, _, err := s.customers.List(ctx, ports.CustomerFilter{CreatedBy: id, Page: 1, Limit: recentCustomersLimit})
		if err != nil {
			return nil, fmt.Errorf("get user: recent customers: %w", err)
		}
		detail.RecentCustomers = recent
	}
	return detail, nil
}

// Create adds an identity on behalf of an administrator and returns a token
// pair for it.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*ports.AuthOutcome, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	status := in.Status
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Assignable() {
		return nil, fmt.Errorf("%w: status %q cannot be assigned", domain.ErrInvalidInput, status)
	}

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email, "")
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if taken {
		return nil, domain.ErrIdentityExists
	}

	u := &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
		Status:    status,
	}
	u.SetPassword(in.Password)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	identity := u.Sanitize()
	pair, err := s.tokens.IssuePair(claimsFor(identity))
	if err != nil {
		return nil, fmt.Errorf("create user: issue tokens: %w", err)
	}
	s.log.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("user created")
	return &ports.AuthOutcome{Identity: identity, Tokens: pair}, nil
}

// Update applies a partial change. A new username or email must not belong
// to any other identity.
func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.Identity, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil || in.Email != nil {
		var username, email string
		if in.Username != nil {
			username = *in.Username
		}
		if in.Email != nil {
			email = *in.Email
		}
		taken, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email, id)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if taken {
			return nil, domain.ErrIdentityExists
		}
	}

	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
		u.Role = *in.Role
	}
	if in.Status != nil {
		if !in.Status.Assignable() {
			return nil, fmt.Errorf("%w: status %q cannot be assigned", domain.ErrInvalidInput, *in.Status)
		}
		u.Status = *in.Status
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u.Sanitize(), nil
}

// ChangePassword lets an identity change its own password; administrators
// may change anyone's. The current password must always verify.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Principal, in ports.ChangePasswordInput) error {
	if actor.ID != in.ID && !actor.IsAdmin() {
		return domain.ErrPasswordChangeForbidden
	}
	if in.NewPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrInvalidInput)
	}

	u, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(in.CurrentPassword, u.PasswordHash) {
		return domain.ErrCurrentPasswordIncorrect
	}

	u.SetPassword(in.NewPassword)
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.audit.Record(domain.AuthEvent{
		Type:       domain.EventPasswordChanged,
		Username:   u.Username,
		IdentityID: u.ID,
		ActorID:    actor.ID,
		Timestamp:  s.now().UTC(),
	})
	return nil
}

func (s *UserService) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Identity, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return s.Update(ctx, id, ports.UpdateUserInput{Role: &role})
}

func (s *UserService) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Identity, error) {
	if !status.Assignable() {
		return nil, fmt.Errorf("%w: status %q cannot be assigned", domain.ErrInvalidInput, status)
	}
	return s.Update(ctx, id, ports.UpdateUserInput{Status: &status})
}

// Deactivate marks the identity inactive. Identities are never removed.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	inactive := domain.StatusInactive
	if _, err := s.Update(ctx, id, ports.UpdateUserInput{Status: &inactive}); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	s.log.Info().Str("id", id).Msg("user deactivated")
	return nil
}

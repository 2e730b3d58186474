package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
	"github.com/brokerdesk/backoffice-api/internal/pkg/token"
)

// AdminSeed is one administrator created when the store has none.
type AdminSeed struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService implements credential validation, registration, token refresh
// and the default admin bootstrap.
type AuthService struct {
	repo   ports.IdentityRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	audit  ports.AuditRecorder
	seeds  []AdminSeed
	log    zerolog.Logger
	now    func() time.Time

	// decoyHash is compared against for unknown usernames so they cost the
	// same bcrypt work as a real check.
	decoyHash string
}

func NewAuthService(
	repo ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	audit ports.AuditRecorder,
	seeds []AdminSeed,
	log zerolog.Logger,
) (*AuthService, error) {
	if audit == nil {
		audit = discardRecorder{}
	}
	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		return nil, fmt.Errorf("auth service: decoy hash: %w", err)
	}
	return &AuthService{
		repo:      NewHashingIdentityRepository(repo, hasher),
		hasher:    hasher,
		tokens:    tokens,
		audit:     audit,
		seeds:     seeds,
		log:       log,
		now:       time.Now,
		decoyHash: decoy,
	}, nil
}

// ValidateCredentials looks up an active identity by username and checks the
// password. Unknown username, inactive identity and wrong password all yield
// (nil, nil).
func (s *AuthService) ValidateCredentials(ctx context.Context, username, password string) (*domain.Identity, error) {
	u, err := s.repo.FindActiveByUsername(ctx, username)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		// Spend the same bcrypt work as a real comparison.
		s.hasher.Verify(password, s.decoyHash)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("validate credentials: %w", err)
	}
	if !u.IsActive() || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, nil
	}

	now := s.now().UTC()
	if err := s.repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("validate credentials: touch last login: %w", err)
	}
	u.LastLoginAt = &now
	return u.Sanitize(), nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthOutcome, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		s.record(domain.EventLoginFailed, username, "", "")
		s.log.Info().Str("username", username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	out, err := s.issue(identity)
	if err != nil {
		return nil, err
	}
	s.record(domain.EventLoginSucceeded, identity.Username, identity.ID, identity.ID)
	s.log.Info().Str("username", identity.Username).Str("role", string(identity.Role)).Msg("login succeeded")
	return out, nil
}

// Register creates an identity with role user unless an administrator is
// the caller, in which case any valid role may be assigned.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthOutcome, error) {
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
	if role != domain.RoleUser && (in.Actor == nil || !in.Actor.IsAdmin()) {
		return nil, domain.ErrRoleAssignmentForbidden
	}

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email, "")
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
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
		Status:    domain.StatusActive,
	}
	u.SetPassword(in.Password)

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrIdentityExists) {
			return nil, domain.ErrIdentityExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	out, err := s.issue(u.Sanitize())
	if err != nil {
		return nil, err
	}
	actorID := ""
	if in.Actor != nil {
		actorID = in.Actor.ID
	}
	s.record(domain.EventRegistered, u.Username, u.ID, actorID)
	s.log.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("identity registered")
	return out, nil
}

// Refresh redeems a refresh token for a new pair. The identity is re-read so
// a suspended or removed account cannot extend its session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthOutcome, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if claims.Use != token.UseRefresh {
		return nil, domain.ErrUnauthorized
	}

	u, err := s.repo.FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !u.IsActive() {
		return nil, domain.ErrUnauthorized
	}

	out, err := s.issue(u.Sanitize())
	if err != nil {
		return nil, err
	}
	s.record(domain.EventTokenRefreshed, u.Username, u.ID, u.ID)
	return out, nil
}

// BootstrapDefaultAdmins creates the configured seed administrators when no
// admin exists. Safe to call on every start.
func (s *AuthService) BootstrapDefaultAdmins(ctx context.Context) error {
	admins, err := s.repo.Count(ctx, ports.IdentityCount{Role: domain.RoleAdmin})
	if err != nil {
		return fmt.Errorf("bootstrap admins: %w", err)
	}
	if admins > 0 {
		s.log.Debug().Int64("admins", admins).Msg("admin bootstrap skipped")
		return nil
	}
	if len(s.seeds) == 0 {
		return errors.New("bootstrap admins: no admin seeds configured")
	}

	for _, seed := range s.seeds {
		if seed.Username == "" || seed.Email == "" || seed.Password == "" {
			return fmt.Errorf("bootstrap admins: seed %q is incomplete", seed.Username)
		}
		u := &domain.User{
			Username:  seed.Username,
			Email:     seed.Email,
			FirstName: seed.FirstName,
			LastName:  seed.LastName,
			Role:      domain.RoleAdmin,
			Status:    domain.StatusActive,
		}
		u.SetPassword(seed.Password)

		if err := s.repo.Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrIdentityExists) {
				// Another replica may have seeded first; the recount below
				// catches rows held by non-admins.
				s.log.Info().Str("username", seed.Username).Msg("seed admin already present")
				continue
			}
			return fmt.Errorf("bootstrap admins: create %s: %w", seed.Username, err)
		}
		s.record(domain.EventAdminBootstrapped, u.Username, u.ID, "")
		s.log.Info().Str("username", u.Username).Msg("default admin created")
	}

	admins, err = s.repo.Count(ctx, ports.IdentityCount{Role: domain.RoleAdmin})
	if err != nil {
		return fmt.Errorf("bootstrap admins: recount: %w", err)
	}
	if admins == 0 {
		return errors.New("bootstrap admins: seed usernames or emails are held by non-admin identities, no admin exists")
	}
	return nil
}

// OnStartup runs the one-time initialisation hooks.
func (s *AuthService) OnStartup(ctx context.Context) error {
	return s.BootstrapDefaultAdmins(ctx)
}

func (s *AuthService) issue(identity *domain.Identity) (*ports.AuthOutcome, error) {
	pair, err := s.tokens.IssuePair(claimsFor(identity))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &ports.AuthOutcome{Identity: identity, Tokens: pair}, nil
}

func (s *AuthService) record(kind domain.AuthEventType, username, identityID, actorID string) {
	s.audit.Record(domain.AuthEvent{
		Type:       kind,
		Username:   username,
		IdentityID: identityID,
		ActorID:    actorID,
		Timestamp:  s.now().UTC(),
	})
}

func claimsFor(identity *domain.Identity) token.Claims {
	return token.NewClaims(identity.ID, identity.Username, identity.Email, string(identity.Role))
}

type discardRecorder struct{}

func (discardRecorder) Record(domain.AuthEvent) {}

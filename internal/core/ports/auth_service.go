package ports

import (
	"context"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/pkg/token"
)

// AuthOutcome is returned by every operation that hands out credentials.
type AuthOutcome struct {
	Identity *domain.Identity
	Tokens   *token.Pair
}

// RegisterInput carries a self-registration request. Actor is the caller's
// principal when the request was authenticated, nil otherwise.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role // empty defaults to user
	Actor     *domain.Principal
}

type AuthService interface {
	// ValidateCredentials returns (nil, nil) when the username is unknown,
	// the identity is not active, or the password does not match.
	ValidateCredentials(ctx context.Context, username, password string) (*domain.Identity, error)
	Login(ctx context.Context, username, password string) (*AuthOutcome, error)
	Register(ctx context.Context, in RegisterInput) (*AuthOutcome, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthOutcome, error)
	BootstrapDefaultAdmins(ctx context.Context) error
}

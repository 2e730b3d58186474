package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brokerdesk/backoffice-api/internal/api/middleware"
	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
	"github.com/brokerdesk/backoffice-api/internal/pkg/token"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, username, password string) (*ports.AuthOutcome, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthOutcome, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*ports.AuthOutcome, error)
}

func (s *stubAuthService) ValidateCredentials(context.Context, string, string) (*domain.Identity, error) {
	return nil, nil
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.AuthOutcome, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthOutcome, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthOutcome, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) BootstrapDefaultAdmins(context.Context) error { return nil }

type stubUserService struct {
	ports.UserService
	getFn            func(ctx context.Context, id string) (*ports.UserDetail, error)
	listFn           func(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error)
	updateFn         func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.Identity, error)
	changePasswordFn func(ctx context.Context, actor domain.Principal, in ports.ChangePasswordInput) error
}

func (s *stubUserService) Get(ctx context.Context, id string) (*ports.UserDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) List(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.Identity, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) ChangePassword(ctx context.Context, actor domain.Principal, in ports.ChangePasswordInput) error {
	return s.changePasswordFn(ctx, actor, in)
}

type stubCustomerService struct {
	ports.CustomerService
	createFn func(ctx context.Context, in ports.CustomerInput, actor domain.Principal) (*domain.Customer, error)
	updateFn func(ctx context.Context, id string, in ports.UpdateCustomerInput) (*domain.Customer, error)
}

func (s *stubCustomerService) Create(ctx context.Context, in ports.CustomerInput, actor domain.Principal) (*domain.Customer, error) {
	return s.createFn(ctx, in, actor)
}

func (s *stubCustomerService) Update(ctx context.Context, id string, in ports.UpdateCustomerInput) (*domain.Customer, error) {
	return s.updateFn(ctx, id, in)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, p domain.Principal) {
	middleware.SetPrincipal(c, p)
}

func sampleIdentity(username string, role domain.Role) *domain.Identity {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Identity{
		ID:        "id-" + username,
		Username:  username,
		Email:     username + "@broker.test",
		FirstName: "First",
		LastName:  "Last",
		Role:      role,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleOutcome(username string, role domain.Role) *ports.AuthOutcome {
	return &ports.AuthOutcome{
		Identity: sampleIdentity(username, role),
		Tokens: &token.Pair{
			AccessToken:      "access-" + username,
			RefreshToken:     "refresh-" + username,
			AccessExpiresAt:  time.Now().Add(time.Hour),
			RefreshExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		},
	}
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}

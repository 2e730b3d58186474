package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

const dateLayout = "2006-01-02"

// --- Request → Service input ---

func toRegisterInput(req registerRequest, actor *domain.Principal) ports.RegisterInput {
	return ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.Role(req.Role),
		Actor:     actor,
	}
}

func toCreateUserInput(req createUserRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.Role(req.Role),
		Status:    domain.Status(req.Status),
	}
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		in.Status = &status
	}
	return in
}

func toCustomerInput(req createCustomerRequest) (ports.CustomerInput, error) {
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return ports.CustomerInput{}, err
	}
	return ports.CustomerInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		DateOfBirth: dob,
		Occupation:  req.Occupation,
	}, nil
}

func toUpdateCustomerInput(req updateCustomerRequest) (ports.UpdateCustomerInput, error) {
	in := ports.UpdateCustomerInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Occupation:  req.Occupation,
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return ports.UpdateCustomerInput{}, err
		}
		in.DateOfBirth = dob
	}
	if req.Status != nil {
		status := domain.CustomerStatus(*req.Status)
		in.Status = &status
	}
	return in, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp. Empty input
// yields nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, "dateOfBirth must be a valid date (YYYY-MM-DD)")
}

// --- Service result → HTTP response ---

func toIdentityResponse(i *domain.Identity) identityResponse {
	return identityResponse{
		ID:          i.ID,
		Username:    i.Username,
		Email:       i.Email,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		Role:        i.Role,
		Status:      i.Status,
		LastLoginAt: i.LastLoginAt,
		CreatedAt:   i.CreatedAt.UTC(),
		UpdatedAt:   i.UpdatedAt.UTC(),
	}
}

func toIdentityResponses(items []*domain.Identity) []identityResponse {
	out := make([]identityResponse, len(items))
	for i, item := range items {
		out[i] = toIdentityResponse(item)
	}
	return out
}

func toAuthResponse(o *ports.AuthOutcome) authResponse {
	return authResponse{
		User:             toIdentityResponse(o.Identity),
		AccessToken:      o.Tokens.AccessToken,
		RefreshToken:     o.Tokens.RefreshToken,
		TokenType:        "Bearer",
		AccessExpiresAt:  o.Tokens.AccessExpiresAt.UTC(),
		RefreshExpiresAt: o.Tokens.RefreshExpiresAt.UTC(),
	}
}

func toPaginationResponse(p ports.Pagination) paginationResponse {
	return paginationResponse{
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

func toUserDetailResponse(d *ports.UserDetail) userDetailResponse {
	return userDetailResponse{
		identityResponse: toIdentityResponse(d.Identity),
		Customers:        toCustomerResponses(d.RecentCustomers),
	}
}

func toUserStatsResponse(s *ports.UserStats) userStatsResponse {
	dist := make([]roleCountResponse, len(s.RoleDistribution))
	for i, rc := range s.RoleDistribution {
		dist[i] = roleCountResponse{Role: rc.Role, Count: rc.Count}
	}
	return userStatsResponse{
		TotalUsers:       s.Total,
		ActiveUsers:      s.Active,
		AdminUsers:       s.Admins,
		BrokerUsers:      s.Brokers,
		RoleDistribution: dist,
	}
}

func toCustomerResponse(c *domain.Customer) customerResponse {
	resp := customerResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
		Occupation:  c.Occupation,
		Status:      c.Status,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
	if c.DateOfBirth != nil {
		resp.DateOfBirth = c.DateOfBirth.UTC().Format(dateLayout)
	}
	return resp
}

func toCustomerResponses(items []*domain.Customer) []customerResponse {
	out := make([]customerResponse, len(items))
	for i, item := range items {
		out[i] = toCustomerResponse(item)
	}
	return out
}

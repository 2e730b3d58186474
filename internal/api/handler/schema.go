package handler

import (
	"time"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// envelope wraps every administrative response.
type envelope struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username  string `json:"username"  validate:"required,min=3"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,min=2"`
	LastName  string `json:"lastName"  validate:"required,min=2"`
	Role      string `json:"role"      validate:"omitempty,oneof=admin manager broker underwriter accountant claims_officer user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResponse struct {
	User             identityResponse `json:"user"`
	AccessToken      string           `json:"access_token"`
	RefreshToken     string           `json:"refresh_token"`
	TokenType        string           `json:"token_type"`
	AccessExpiresAt  time.Time        `json:"access_expires_at"`
	RefreshExpiresAt time.Time        `json:"refresh_expires_at"`
}

type principalResponse struct {
	ID       string      `json:"userId"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// --- Users ---

type identityResponse struct {
	ID          string        `json:"id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	Role        domain.Role   `json:"role"`
	Status      domain.Status `json:"status"`
	LastLoginAt *time.Time    `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type userDetailResponse struct {
	identityResponse
	Customers []customerResponse `json:"customers"`
}

type listUsersQuery struct {
	Page   int    `query:"page"   validate:"omitempty,min=1"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1"`
	Search string `query:"search"`
	Role   string `query:"role"   validate:"omitempty,oneof=admin manager broker underwriter accountant claims_officer user"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive suspended pending deleted"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type listUsersResponse struct {
	Users      []identityResponse `json:"users"`
	Pagination paginationResponse `json:"pagination"`
}

type createUserRequest struct {
	Username  string `json:"username"  validate:"required,min=3"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,min=2"`
	LastName  string `json:"lastName"  validate:"required,min=2"`
	Role      string `json:"role"      validate:"omitempty,oneof=admin manager broker underwriter accountant claims_officer user"`
	Status    string `json:"status"    validate:"omitempty,oneof=active inactive suspended"`
}

type updateUserRequest struct {
	Username  *string `json:"username"  validate:"omitempty,min=3"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty,min=2"`
	LastName  *string `json:"lastName"  validate:"omitempty,min=2"`
	Role      *string `json:"role"      validate:"omitempty,oneof=admin manager broker underwriter accountant claims_officer user"`
	Status    *string `json:"status"    validate:"omitempty,oneof=active inactive suspended"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin manager broker underwriter accountant claims_officer user"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

type createdUserResponse struct {
	User         identityResponse `json:"user"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
}

type roleCountResponse struct {
	Role  domain.Role `json:"role"`
	Count int64       `json:"count"`
}

type userStatsResponse struct {
	TotalUsers       int64               `json:"totalUsers"`
	ActiveUsers      int64               `json:"activeUsers"`
	AdminUsers       int64               `json:"adminUsers"`
	BrokerUsers      int64               `json:"brokerUsers"`
	RoleDistribution []roleCountResponse `json:"roleDistribution"`
}

// --- Customers ---

type createCustomerRequest struct {
	FirstName   string `json:"firstName"   validate:"required"`
	LastName    string `json:"lastName"    validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	DateOfBirth string `json:"dateOfBirth"`
	Occupation  string `json:"occupation"`
}

type updateCustomerRequest struct {
	FirstName   *string `json:"firstName"   validate:"omitempty,min=1"`
	LastName    *string `json:"lastName"    validate:"omitempty,min=1"`
	Email       *string `json:"email"       validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"dateOfBirth"`
	Occupation  *string `json:"occupation"`
	Status      *string `json:"status"      validate:"omitempty,oneof=active inactive"`
}

type listCustomersQuery struct {
	Page   int    `query:"page"   validate:"omitempty,min=1"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1"`
	Search string `query:"search"`
}

type customerResponse struct {
	ID          string                `json:"id"`
	FirstName   string                `json:"firstName"`
	LastName    string                `json:"lastName"`
	Email       string                `json:"email"`
	PhoneNumber string                `json:"phoneNumber,omitempty"`
	Address     string                `json:"address,omitempty"`
	DateOfBirth string                `json:"dateOfBirth,omitempty"`
	Occupation  string                `json:"occupation,omitempty"`
	Status      domain.CustomerStatus `json:"status"`
	CreatedBy   *string               `json:"createdBy,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

type listCustomersResponse struct {
	Customers  []customerResponse `json:"customers"`
	Pagination paginationResponse `json:"pagination"`
}

// --- Dashboard ---

type welcomeResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// --- Audit ---

type listAuditQuery struct {
	Username string `query:"username"`
	Type     string `query:"type"  validate:"omitempty,oneof=login_succeeded login_failed registered token_refreshed password_changed admin_bootstrapped"`
	Limit    int    `query:"limit" validate:"omitempty,min=1"`
}

type auditEventsResponse struct {
	Events []*domain.AuthEvent `json:"events"`
	Count  int                 `json:"count"`
}

package domain

import (
	"errors"
	"time"
)

// Role is the coarse permission class of an identity.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleManager       Role = "manager"
	RoleBroker        Role = "broker"
	RoleUnderwriter   Role = "underwriter"
	RoleAccountant    Role = "accountant"
	RoleClaimsOfficer Role = "claims_officer"
	RoleUser          Role = "user"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleAdmin, RoleManager, RoleBroker, RoleUnderwriter, RoleAccountant, RoleClaimsOfficer, RoleUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of an identity. Only active identities may
// authenticate.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
	StatusDeleted   Status = "deleted"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending, StatusDeleted:
		return true
	}
	return false
}

// Assignable reports whether an administrator may set s explicitly.
func (s Status) Assignable() bool {
	return s == StatusActive || s == StatusInactive || s == StatusSuspended
}

var (
	ErrInvalidCredentials       = errors.New("Invalid credentials")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrForbidden                = errors.New("access forbidden")
	ErrIdentityNotFound         = errors.New("User not found")
	ErrIdentityExists           = errors.New("Username or email already exists")
	ErrPasswordChangeForbidden  = errors.New("You can only change your own password")
	ErrCurrentPasswordIncorrect = errors.New("Current password is incorrect")
	ErrRoleAssignmentForbidden  = errors.New("only administrators may assign elevated roles")
	ErrInvalidInput             = errors.New("invalid input")
)

// User is the stored identity record. PasswordHash is only ever written by
// the hashing repository; callers set a new password through SetPassword.
type User struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Role         Role       `db:"role"`
	Status       Status     `db:"status"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`

	pendingPassword string
	passwordChanged bool
}

// SetPassword records a new plaintext to be hashed on the next write.
func (u *User) SetPassword(plaintext string) {
	u.pendingPassword = plaintext
	u.passwordChanged = true
}

// PasswordChanged reports whether SetPassword was called since the last write.
func (u *User) PasswordChanged() bool { return u.passwordChanged }

// PendingPassword returns the plaintext recorded by SetPassword.
func (u *User) PendingPassword() string { return u.pendingPassword }

// ApplyPasswordHash stores hash and forgets the pending plaintext.
func (u *User) ApplyPasswordHash(hash string) {
	u.PasswordHash = hash
	u.pendingPassword = ""
	u.passwordChanged = false
}

// IsActive reports whether the identity may authenticate.
func (u *User) IsActive() bool { return u.Status == StatusActive }

// Sanitize returns the externally visible view of u.
func (u *User) Sanitize() *Identity {
	if u == nil {
		return nil
	}
	return &Identity{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Identity is a User without secret material.
type Identity struct {
	ID          string
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Role        Role
	Status      Status
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Principal is the identity snapshot carried by a verified access token.
type Principal struct {
	ID       string
	Username string
	Email    string
	Role     Role
}

// IsAdmin reports whether p holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

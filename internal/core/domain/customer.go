package domain

import (
	"errors"
	"time"
)

// CustomerStatus is the lifecycle state of a customer record.
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
)

// Valid reports whether s is a known customer status.
func (s CustomerStatus) Valid() bool {
	return s == CustomerActive || s == CustomerInactive
}

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer email already exists")
)

// Customer is a policyholder record managed by back-office staff.
type Customer struct {
	ID          string         `db:"id"`
	FirstName   string         `db:"first_name"`
	LastName    string         `db:"last_name"`
	Email       string         `db:"email"`
	PhoneNumber string         `db:"phone_number"`
	Address     string         `db:"address"`
	DateOfBirth *time.Time     `db:"date_of_birth"`
	Occupation  string         `db:"occupation"`
	Status      CustomerStatus `db:"status"`
	CreatedBy   *string        `db:"created_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CustomerStats summarises the customer book.
type CustomerStats struct {
	Total        int64 `json:"totalCustomers"`
	Active       int64 `json:"activeCustomers"`
	Inactive     int64 `json:"inactiveCustomers"`
	NewThisMonth int64 `json:"newThisMonth"`
}

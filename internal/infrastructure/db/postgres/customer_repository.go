package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

const customersTable = "customers"

var customerColumns = []string{
	"id", "first_name", "last_name", "email", "phone_number", "address",
	"date_of_birth", "occupation", "status", "created_by", "created_at", "updated_at",
}

// CustomerRepository implements ports.CustomerRepository on PostgreSQL.
type CustomerRepository struct {
	db  DBTX
	now func() time.Time
}

// NewCustomerRepository returns a CustomerRepository backed by db.
func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db, now: time.Now}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := r.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	query, args, err := psql.Insert(customersTable).
		Columns(customerColumns...).
		Values(c.ID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Address,
			c.DateOfBirth, c.Occupation, c.Status, c.CreatedBy, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting customer: %w", domain.ErrCustomerExists)
		}
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	c.UpdatedAt = r.now().UTC()

	query, args, err := psql.Update(customersTable).
		Set("first_name", c.FirstName).
		Set("last_name", c.LastName).
		Set("email", c.Email).
		Set("phone_number", c.PhoneNumber).
		Set("address", c.Address).
		Set("date_of_birth", c.DateOfBirth).
		Set("occupation", c.Occupation).
		Set("status", c.Status).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("updating customer: %w", domain.ErrCustomerExists)
		case isMalformedID(err):
			return domain.ErrCustomerNotFound
		}
		return fmt.Errorf("updating customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From(customersTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var c domain.Customer
	if err := pgxscan.Get(ctx, r.db, &c, query, args...); err != nil {
		if pgxscan.NotFound(err) || isMalformedID(err) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("scanning customer: %w", err)
	}
	return &c, nil
}

// List returns one page of customers, newest first, and the total match count.
func (r *CustomerRepository) List(ctx context.Context, f ports.CustomerFilter) ([]*domain.Customer, int64, error) {
	where := squirrel.And{}
	if f.Search != "" {
		p := containsPattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"first_name": p},
			squirrel.ILike{"last_name": p},
			squirrel.ILike{"email": p},
			squirrel.ILike{"phone_number": p},
		})
	}
	if f.CreatedBy != "" {
		where = append(where, squirrel.Eq{"created_by": f.CreatedBy})
	}

	countQ := psql.Select("COUNT(*)").From(customersTable)
	listQ := psql.Select(customerColumns...).From(customersTable)
	if len(where) > 0 {
		countQ = countQ.Where(where)
		listQ = listQ.Where(where)
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	query, args, err = listQ.
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(offset(f.Page, f.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building list query: %w", err)
	}
	var customers []*domain.Customer
	if err := pgxscan.Select(ctx, r.db, &customers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("scanning customers: %w", err)
	}
	return customers, total, nil
}

func (r *CustomerRepository) Stats(ctx context.Context, since time.Time) (*domain.CustomerStats, error) {
	query, args, err := psql.Select("COUNT(*)").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE status = ?)", domain.CustomerActive)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE created_at >= ?)", since)).
		From(customersTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building stats query: %w", err)
	}

	var s domain.CustomerStats
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.Total, &s.Active, &s.NewThisMonth); err != nil {
		return nil, fmt.Errorf("scanning customer stats: %w", err)
	}
	s.Inactive = s.Total - s.Active
	return &s, nil
}

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

const usersTable = "users"

var identityColumns = []string{
	"id", "username", "email", "password_hash", "first_name", "last_name",
	"role", "status", "last_login_at", "created_at", "updated_at",
}

// IdentityRepository implements ports.IdentityRepository on PostgreSQL.
type IdentityRepository struct {
	db  DBTX
	now func() time.Time
}

// NewIdentityRepository returns an IdentityRepository backed by db.
func NewIdentityRepository(db DBTX) *IdentityRepository {
	return &IdentityRepository{db: db, now: time.Now}
}

func (r *IdentityRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	query, args, err := psql.Insert(usersTable).
		Columns(identityColumns...).
		Values(u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
			u.Role, u.Status, u.LastLoginAt, u.CreatedAt, u.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting identity: %w", domain.ErrIdentityExists)
		}
		return fmt.Errorf("inserting identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = r.now().UTC()

	query, args, err := psql.Update(usersTable).
		Set("username", u.Username).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("role", u.Role).
		Set("status", u.Status).
		Set("updated_at", u.UpdatedAt).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("updating identity: %w", domain.ErrIdentityExists)
		case isMalformedID(err):
			return domain.ErrIdentityNotFound
		}
		return fmt.Errorf("updating identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

func (r *IdentityRepository) FindActiveByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, squirrel.Eq{"username": username, "status": domain.StatusActive})
}

func (r *IdentityRepository) findOne(ctx context.Context, where squirrel.Eq) (*domain.User, error) {
	query, args, err := psql.Select(identityColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var u domain.User
	if err := pgxscan.Get(ctx, r.db, &u, query, args...); err != nil {
		if pgxscan.NotFound(err) || isMalformedID(err) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("scanning identity: %w", err)
	}
	return &u, nil
}

func (r *IdentityRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error) {
	match := squirrel.Or{}
	if username != "" {
		match = append(match, squirrel.Eq{"username": username})
	}
	if email != "" {
		match = append(match, squirrel.Eq{"email": email})
	}
	if len(match) == 0 {
		return false, nil
	}

	qb := psql.Select("COUNT(*)").From(usersTable).Where(match)
	if excludeID != "" {
		qb = qb.Where(squirrel.NotEq{"id": excludeID})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return false, fmt.Errorf("building exists query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("checking identity uniqueness: %w", err)
	}
	return n > 0, nil
}

func (r *IdentityRepository) Count(ctx context.Context, by ports.IdentityCount) (int64, error) {
	where := squirrel.Eq{}
	if by.Role != "" {
		where["role"] = by.Role
	}
	if by.Status != "" {
		where["status"] = by.Status
	}

	qb := psql.Select("COUNT(*)").From(usersTable)
	if len(where) > 0 {
		qb = qb.Where(where)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting identities: %w", err)
	}
	return n, nil
}

func (r *IdentityRepository) RoleDistribution(ctx context.Context) ([]ports.RoleCount, error) {
	query, args, err := psql.Select("role", "COUNT(*) AS count").
		From(usersTable).
		GroupBy("role").
		OrderBy("role").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building distribution query: %w", err)
	}
	var out []ports.RoleCount
	if err := pgxscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scanning role distribution: %w", err)
	}
	return out, nil
}

// List returns one page of identities, newest first, and the total match count.
func (r *IdentityRepository) List(ctx context.Context, f ports.IdentityFilter) ([]*domain.User, int64, error) {
	where := squirrel.And{}
	if f.Search != "" {
		p := containsPattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"username": p},
			squirrel.ILike{"email": p},
			squirrel.ILike{"first_name": p},
			squirrel.ILike{"last_name": p},
		})
	}
	if f.Role != "" {
		where = append(where, squirrel.Eq{"role": f.Role})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"status": f.Status})
	}

	countQ := psql.Select("COUNT(*)").From(usersTable)
	listQ := psql.Select(identityColumns...).From(usersTable)
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
		return nil, 0, fmt.Errorf("counting identities: %w", err)
	}

	query, args, err = listQ.
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(offset(f.Page, f.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building list query: %w", err)
	}
	var users []*domain.User
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("scanning identities: %w", err)
	}
	return users, total, nil
}

func (r *IdentityRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	query, args, err := psql.Update(usersTable).
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("touching last login: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
	"github.com/brokerdesk/backoffice-api/internal/pkg/password"
	"github.com/brokerdesk/backoffice-api/internal/pkg/token"
)

// ---------------------------------------------------------------------------
// In-memory identity repository
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	users   map[string]*domain.User // by id
	seq     int
	writes  []string // raw password_hash values seen by Create/Update
	failErr error    // if set, every call returns it
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubIdentityRepo) clash(u *domain.User) bool {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username || other.Email == u.Email {
			return true
		}
	}
	return false
}

func (r *stubIdentityRepo) Create(_ context.Context, u *domain.User) error {
	if r.failErr != nil {
		return r.failErr
	}
	if r.clash(u) {
		return domain.ErrIdentityExists
	}
	r.seq++
	u.ID = fmt.Sprintf("id-%d", r.seq)
	u.CreatedAt = time.Now().UTC().Add(time.Duration(r.seq) * time.Second)
	u.UpdatedAt = u.CreatedAt
	r.writes = append(r.writes, u.PasswordHash)
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *stubIdentityRepo) Update(_ context.Context, u *domain.User) error {
	if r.failErr != nil {
		return r.failErr
	}
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrIdentityNotFound
	}
	if r.clash(u) {
		return domain.ErrIdentityExists
	}
	r.writes = append(r.writes, u.PasswordHash)
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneUser(u), nil
}

func (r *stubIdentityRepo) FindActiveByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, u := range r.users {
		if u.Username == username && u.Status == domain.StatusActive {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) ExistsByUsernameOrEmail(_ context.Context, username, email, excludeID string) (bool, error) {
	if r.failErr != nil {
		return false, r.failErr
	}
	for id, u := range r.users {
		if id == excludeID {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubIdentityRepo) Count(_ context.Context, by ports.IdentityCount) (int64, error) {
	if r.failErr != nil {
		return 0, r.failErr
	}
	var n int64
	for _, u := range r.users {
		if by.Role != "" && u.Role != by.Role {
			continue
		}
		if by.Status != "" && u.Status != by.Status {
			continue
		}
		n++
	}
	return n, nil
}

func (r *stubIdentityRepo) RoleDistribution(_ context.Context) ([]ports.RoleCount, error) {
	counts := map[domain.Role]int64{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	out := make([]ports.RoleCount, 0, len(counts))
	for role, n := range counts {
		out = append(out, ports.RoleCount{Role: role, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (r *stubIdentityRepo) List(_ context.Context, f ports.IdentityFilter) ([]*domain.User, int64, error) {
	if r.failErr != nil {
		return nil, 0, r.failErr
	}
	var matched []*domain.User
	needle := strings.ToLower(f.Search)
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		if needle != "" {
			hay := strings.ToLower(u.Username + " " + u.Email + " " + u.FirstName + " " + u.LastName)
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *stubIdentityRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (r *stubIdentityRepo) byUsername(username string) *domain.User {
	for _, u := range r.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// In-memory customer repository
// ---------------------------------------------------------------------------

type stubCustomerRepo struct {
	byID       map[string]*domain.Customer
	seq        int
	lastFilter ports.CustomerFilter
	statsSince time.Time
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{byID: make(map[string]*domain.Customer)}
}

func (r *stubCustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	for _, other := range r.byID {
		if other.Email == c.Email {
			return domain.ErrCustomerExists
		}
	}
	r.seq++
	c.ID = fmt.Sprintf("c-%d", r.seq)
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *domain.Customer) error {
	if _, ok := r.byID[c.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCustomerRepo) List(_ context.Context, f ports.CustomerFilter) ([]*domain.Customer, int64, error) {
	r.lastFilter = f
	var out []*domain.Customer
	for _, c := range r.byID {
		if f.CreatedBy != "" && (c.CreatedBy == nil || *c.CreatedBy != f.CreatedBy) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	total := int64(len(out))
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *stubCustomerRepo) Stats(_ context.Context, since time.Time) (*domain.CustomerStats, error) {
	r.statsSince = since
	var s domain.CustomerStats
	for _, c := range r.byID {
		s.Total++
		if c.Status == domain.CustomerActive {
			s.Active++
		}
		if !c.CreatedAt.Before(since) {
			s.NewThisMonth++
		}
	}
	s.Inactive = s.Total - s.Active
	return &s, nil
}

// ---------------------------------------------------------------------------
// Cache, audit and security helpers
// ---------------------------------------------------------------------------

type stubStatsCache struct {
	stored      *ports.DashboardStats
	gets        int
	sets        int
	invalidated int
}

func (c *stubStatsCache) Get(_ context.Context) (*ports.DashboardStats, bool, error) {
	c.gets++
	if c.stored == nil {
		return nil, false, nil
	}
	clone := *c.stored
	return &clone, true, nil
}

func (c *stubStatsCache) Set(_ context.Context, s *ports.DashboardStats, _ time.Duration) error {
	c.sets++
	clone := *s
	c.stored = &clone
	return nil
}

func (c *stubStatsCache) Invalidate(_ context.Context) error {
	c.invalidated++
	c.stored = nil
	return nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *recordingAudit) Record(e domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) types() []domain.AuthEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

// countingHasher wraps bcrypt at minimum cost and counts Hash calls.
type countingHasher struct {
	inner  *password.BcryptHasher
	hashes int
}

func newCountingHasher() *countingHasher {
	return &countingHasher{inner: password.NewBcryptHasher(4)}
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.hashes++
	return h.inner.Hash(plaintext)
}

func (h *countingHasher) Verify(plaintext, hashed string) bool {
	return h.inner.Verify(plaintext, hashed)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("hasher unavailable") }
func (failingHasher) Verify(string, string) bool   { return false }

func newTestIssuer(opts ...token.Option) *token.Issuer {
	iss, err := token.NewIssuer("test-secret", opts...)
	if err != nil {
		panic(err)
	}
	return iss
}

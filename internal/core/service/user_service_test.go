package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

type userFixture struct {
	repo      *stubIdentityRepo
	customers *stubCustomerRepo
	hasher    *countingHasher
	audit     *recordingAudit
	svc       *UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		repo:      newStubIdentityRepo(),
		customers: newStubCustomerRepo(),
		hasher:    newCountingHasher(),
		audit:     &recordingAudit{},
	}
	f.svc = NewUserService(f.repo, f.customers, f.hasher, newTestIssuer(), f.audit, zerolog.Nop())
	return f
}

func (f *userFixture) create(t *testing.T, username string, role domain.Role) *domain.Identity {
	t.Helper()
	out, err := f.svc.Create(context.Background(), ports.CreateUserInput{
		Username: username, Email: username + "@x.com", Password: "pw-" + username, Role: role,
	})
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return out.Identity
}

func TestUserService_Create_Defaults(t *testing.T) {
	f := newUserFixture()

	out, err := f.svc.Create(context.Background(), ports.CreateUserInput{Username: "amy", Email: "amy@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if out.Identity.Role != domain.RoleUser || out.Identity.Status != domain.StatusActive {
		t.Fatalf("unexpected defaults: role=%s status=%s", out.Identity.Role, out.Identity.Status)
	}
	if out.Tokens == nil || out.Tokens.AccessToken == "" {
		t.Fatal("expected tokens for the created user")
	}
}

func TestUserService_Create_Conflict(t *testing.T) {
	f := newUserFixture()
	f.create(t, "amy", "")

	_, err := f.svc.Create(context.Background(), ports.CreateUserInput{Username: "amy2", Email: "amy@x.com", Password: "pw"})
	if !errors.Is(err, domain.ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
}

func TestUserService_Create_RejectsUnassignableStatus(t *testing.T) {
	f := newUserFixture()
	_, err := f.svc.Create(context.Background(), ports.CreateUserInput{
		Username: "p", Email: "p@x.com", Password: "pw", Status: domain.StatusPending,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserService_Update_UniquenessExcludesSelf(t *testing.T) {
	f := newUserFixture()
	amy := f.create(t, "amy", "")
	f.create(t, "ben", "")

	same := "amy"
	first := "Amy"
	if _, err := f.svc.Update(context.Background(), amy.ID, ports.UpdateUserInput{Username: &same, FirstName: &first}); err != nil {
		t.Fatalf("updating to own username should succeed: %v", err)
	}

	taken := "ben@x.com"
	if _, err := f.svc.Update(context.Background(), amy.ID, ports.UpdateUserInput{Email: &taken}); !errors.Is(err, domain.ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
}

func TestUserService_Update_NotFound(t *testing.T) {
	f := newUserFixture()
	name := "x"
	if _, err := f.svc.Update(context.Background(), "missing", ports.UpdateUserInput{FirstName: &name}); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestUserService_Update_DoesNotRehash(t *testing.T) {
	f := newUserFixture()
	amy := f.create(t, "amy", "")
	before := f.repo.users[amy.ID].PasswordHash
	hashes := f.hasher.hashes

	name := "Amelia"
	if _, err := f.svc.Update(context.Background(), amy.ID, ports.UpdateUserInput{FirstName: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if f.hasher.hashes != hashes {
		t.Fatalf("expected no hashing on unrelated update")
	}
	if f.repo.users[amy.ID].PasswordHash != before {
		t.Fatal("password hash changed on unrelated update")
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newUserFixture()
	amy := f.create(t, "amy", domain.RoleBroker)
	ben := f.create(t, "ben", domain.RoleBroker)
	boss := f.create(t, "boss", domain.RoleAdmin)
	ctx := context.Background()

	asAmy := domain.Principal{ID: amy.ID, Username: "amy", Role: domain.RoleBroker}
	asBoss := domain.Principal{ID: boss.ID, Username: "boss", Role: domain.RoleAdmin}

	err := f.svc.ChangePassword(ctx, asAmy, ports.ChangePasswordInput{ID: ben.ID, CurrentPassword: "pw-ben", NewPassword: "x"})
	if !errors.Is(err, domain.ErrPasswordChangeForbidden) {
		t.Fatalf("expected ErrPasswordChangeForbidden, got %v", err)
	}

	err = f.svc.ChangePassword(ctx, asAmy, ports.ChangePasswordInput{ID: amy.ID, CurrentPassword: "wrong", NewPassword: "x"})
	if !errors.Is(err, domain.ErrCurrentPasswordIncorrect) {
		t.Fatalf("expected ErrCurrentPasswordIncorrect, got %v", err)
	}

	if err := f.svc.ChangePassword(ctx, asAmy, ports.ChangePasswordInput{ID: amy.ID, CurrentPassword: "pw-amy", NewPassword: "new-amy"}); err != nil {
		t.Fatalf("owner change failed: %v", err)
	}
	if !f.hasher.Verify("new-amy", f.repo.users[amy.ID].PasswordHash) {
		t.Fatal("new password not stored")
	}

	if err := f.svc.ChangePassword(ctx, asBoss, ports.ChangePasswordInput{ID: ben.ID, CurrentPassword: "pw-ben", NewPassword: "new-ben"}); err != nil {
		t.Fatalf("admin change failed: %v", err)
	}

	types := f.audit.types()
	if len(types) != 2 || types[0] != domain.EventPasswordChanged {
		t.Fatalf("expected two password_changed events, got %v", types)
	}
}

func TestUserService_RoleAndStatus(t *testing.T) {
	f := newUserFixture()
	amy := f.create(t, "amy", "")
	ctx := context.Background()

	got, err := f.svc.UpdateRole(ctx, amy.ID, domain.RoleUnderwriter)
	if err != nil || got.Role != domain.RoleUnderwriter {
		t.Fatalf("UpdateRole: %v, %+v", err, got)
	}
	if _, err := f.svc.UpdateRole(ctx, amy.ID, "wizard"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad role, got %v", err)
	}

	got, err = f.svc.UpdateStatus(ctx, amy.ID, domain.StatusSuspended)
	if err != nil || got.Status != domain.StatusSuspended {
		t.Fatalf("UpdateStatus: %v, %+v", err, got)
	}
	if _, err := f.svc.UpdateStatus(ctx, amy.ID, domain.StatusDeleted); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unassignable status, got %v", err)
	}
}

func TestUserService_Deactivate(t *testing.T) {
	f := newUserFixture()
	amy := f.create(t, "amy", "")

	if err := f.svc.Deactivate(context.Background(), amy.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	stored, ok := f.repo.users[amy.ID]
	if !ok {
		t.Fatal("identity must never be deleted")
	}
	if stored.Status != domain.StatusInactive {
		t.Fatalf("expected inactive, got %s", stored.Status)
	}
	if err := f.svc.Deactivate(context.Background(), "missing"); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestUserService_List(t *testing.T) {
	f := newUserFixture()
	for _, name := range []string{"anna", "annie", "bert"} {
		f.create(t, name, domain.RoleBroker)
	}
	f.create(t, "carl", domain.RoleManager)

	res, err := f.svc.List(context.Background(), ports.ListUsersInput{Search: "ANN"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Pagination.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", res.Pagination.Total)
	}
	if res.Items[0].Username != "annie" {
		t.Fatalf("expected newest first, got %s", res.Items[0].Username)
	}

	res, _ = f.svc.List(context.Background(), ports.ListUsersInput{Role: "broker", Page: 2, Limit: 2})
	if res.Pagination.Total != 3 || res.Pagination.TotalPages != 2 || len(res.Items) != 1 {
		t.Fatalf("unexpected pagination: %+v items=%d", res.Pagination, len(res.Items))
	}

	res, _ = f.svc.List(context.Background(), ports.ListUsersInput{Limit: 1000})
	if res.Pagination.Limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", res.Pagination.Limit)
	}

	if _, err := f.svc.List(context.Background(), ports.ListUsersInput{Role: "wizard"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad role filter, got %v", err)
	}
}

func TestUserService_Stats(t *testing.T) {
	f := newUserFixture()
	f.create(t, "root", domain.RoleAdmin)
	f.create(t, "bea", domain.RoleBroker)
	bo := f.create(t, "bo", domain.RoleBroker)
	_ = f.svc.Deactivate(context.Background(), bo.ID)

	stats, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Active != 2 || stats.Admins != 1 || stats.Brokers != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.RoleDistribution) != 2 {
		t.Fatalf("expected 2 roles in distribution, got %+v", stats.RoleDistribution)
	}
}

func TestUserService_Get_IncludesRecentCustomers(t *testing.T) {
	f := newUserFixture()
	amy := f.create(t, "amy", domain.RoleBroker)
	for i := 0; i < 7; i++ {
		createdBy := amy.ID
		_ = f.customers.Create(context.Background(), &domain.Customer{
			FirstName: "C", LastName: "X", Email: string(rune('a'+i)) + "@c.com", CreatedBy: &createdBy,
		})
	}

	detail, err := f.svc.Get(context.Background(), amy.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Identity.Username != "amy" {
		t.Fatalf("unexpected identity: %+v", detail.Identity)
	}
	if len(detail.RecentCustomers) != 5 {
		t.Fatalf("expected 5 recent customers, got %d", len(detail.RecentCustomers))
	}
	if f.customers.lastFilter.CreatedBy != amy.ID {
		t.Fatalf("expected customers filtered by creator")
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

func TestUserHandler_List_BindsQuery(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		listFn: func(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
			if in.Page != 2 || in.Limit != 5 || in.Search != "ali" || in.Role != "broker" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.ListUsersResult{
				Items:      []*domain.Identity{sampleIdentity("alice", domain.RoleBroker)},
				Pagination: ports.Pagination{Total: 6, Page: 2, Limit: 5, TotalPages: 2},
			}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonRequest(e, http.MethodGet, "/v1/users?page=2&limit=5&search=ali&role=broker", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Success bool              `json:"success"`
		Data    listUsersResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || len(resp.Data.Users) != 1 || resp.Data.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_List_RejectsUnknownRole(t *testing.T) {
	e := newEcho()
	handler := NewUserHandler(&stubUserService{})

	c, _ := jsonRequest(e, http.MethodGet, "/v1/users?role=wizard", "")
	if code := httpCode(handler.List(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestUserHandler_Me_UsesPrincipal(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		getFn: func(ctx context.Context, id string) (*ports.UserDetail, error) {
			if id != "id-alice" {
				t.Fatalf("expected principal id, got %q", id)
			}
			return &ports.UserDetail{Identity: sampleIdentity("alice", domain.RoleUser)}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonRequest(e, http.MethodGet, "/v1/users/me", "")
	withPrincipal(c, domain.Principal{ID: "id-alice", Username: "alice", Role: domain.RoleUser})

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		getFn: func(ctx context.Context, id string) (*ports.UserDetail, error) {
			return nil, domain.ErrIdentityNotFound
		},
	}
	handler := NewUserHandler(stub)

	c, _ := jsonRequest(e, http.MethodGet, "/v1/users/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := handler.Get(c); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestUserHandler_Update_PartialFields(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.Identity, error) {
			if id != "id-bob" {
				t.Fatalf("unexpected id %q", id)
			}
			if in.Email == nil || *in.Email != "bob@new.test" {
				t.Fatalf("expected email patch, got %+v", in.Email)
			}
			if in.Username != nil || in.Role != nil || in.Status != nil {
				t.Fatalf("unexpected fields set: %+v", in)
			}
			return sampleIdentity("bob", domain.RoleBroker), nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonRequest(e, http.MethodPatch, "/v1/users/id-bob", `{"email":"bob@new.test"}`)
	c.SetParamNames("id")
	c.SetParamValues("id-bob")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	e := newEcho()
	var gotActor domain.Principal
	stub := &stubUserService{
		changePasswordFn: func(ctx context.Context, actor domain.Principal, in ports.ChangePasswordInput) error {
			gotActor = actor
			if in.ID != "id-alice" || in.CurrentPassword != "Secret1" || in.NewPassword != "Secret2" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonRequest(e, http.MethodPatch, "/v1/users/id-alice/change-password",
		`{"currentPassword":"Secret1","newPassword":"Secret2"}`)
	c.SetParamNames("id")
	c.SetParamValues("id-alice")
	withPrincipal(c, domain.Principal{ID: "id-alice", Username: "alice", Role: domain.RoleUser})

	if err := handler.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || gotActor.Username != "alice" {
		t.Fatalf("unexpected result: code=%d actor=%+v", rec.Code, gotActor)
	}
}

func TestUserHandler_ChangePassword_Forbidden(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		changePasswordFn: func(ctx context.Context, actor domain.Principal, in ports.ChangePasswordInput) error {
			return domain.ErrPasswordChangeForbidden
		},
	}
	handler := NewUserHandler(stub)

	c, _ := jsonRequest(e, http.MethodPatch, "/v1/users/id-bob/change-password",
		`{"currentPassword":"Secret1","newPassword":"Secret2"}`)
	c.SetParamNames("id")
	c.SetParamValues("id-bob")
	withPrincipal(c, domain.Principal{ID: "id-alice", Username: "alice", Role: domain.RoleUser})

	if err := handler.ChangePassword(c); !errors.Is(err, domain.ErrPasswordChangeForbidden) {
		t.Fatalf("expected ErrPasswordChangeForbidden, got %v", err)
	}
}

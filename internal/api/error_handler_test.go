package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/pkg/token"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"invalid token", fmt.Errorf("verify: %w", token.ErrInvalidToken), http.StatusUnauthorized, "invalid token"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"role assignment", domain.ErrRoleAssignmentForbidden, http.StatusForbidden, domain.ErrRoleAssignmentForbidden.Error()},
		{"identity not found", fmt.Errorf("find identity: %w", domain.ErrIdentityNotFound), http.StatusNotFound, "User not found"},
		{"customer not found", domain.ErrCustomerNotFound, http.StatusNotFound, "customer not found"},
		{"identity exists", fmt.Errorf("create identity: %w", domain.ErrIdentityExists), http.StatusConflict, "Username or email already exists"},
		{"customer exists", domain.ErrCustomerExists, http.StatusConflict, "customer email already exists"},
		{"password change", domain.ErrPasswordChangeForbidden, http.StatusBadRequest, "You can only change your own password"},
		{"wrong current password", domain.ErrCurrentPasswordIncorrect, http.StatusBadRequest, "Current password is incorrect"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_InvalidInputKeepsDetail(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	handler(fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, "root"), c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

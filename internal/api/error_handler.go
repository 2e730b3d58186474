package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/pkg/token"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, guard rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized, rootMessage(err)
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrRoleAssignmentForbidden):
		return http.StatusForbidden, rootMessage(err)
	case errors.Is(err, domain.ErrIdentityNotFound),
		errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, rootMessage(err)
	case errors.Is(err, domain.ErrIdentityExists),
		errors.Is(err, domain.ErrCustomerExists):
		return http.StatusConflict, rootMessage(err)
	case errors.Is(err, domain.ErrPasswordChangeForbidden),
		errors.Is(err, domain.ErrCurrentPasswordIncorrect):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// rootMessage returns the sentinel's own text so wrapping context added by
// lower layers never reaches the client.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrInvalidCredentials,
		domain.ErrUnauthorized,
		token.ErrInvalidToken,
		domain.ErrForbidden,
		domain.ErrRoleAssignmentForbidden,
		domain.ErrIdentityNotFound,
		domain.ErrCustomerNotFound,
		domain.ErrIdentityExists,
		domain.ErrCustomerExists,
		domain.ErrPasswordChangeForbidden,
		domain.ErrCurrentPasswordIncorrect,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

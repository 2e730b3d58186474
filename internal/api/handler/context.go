package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brokerdesk/backoffice-api/internal/api/middleware"
	"github.com/brokerdesk/backoffice-api/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware. Its
// absence means the route was mounted without the guard, so the request is
// rejected rather than served anonymously.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok || p.ID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// bindAndValidate decodes the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, envelope{
		Status:  code,
		Success: true,
		Message: message,
		Data:    data,
	})
}

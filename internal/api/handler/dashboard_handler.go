package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Welcome handles GET /v1/dashboard/welcome.
//
// @Summary      Dashboard greeting
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  welcomeResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/dashboard/welcome [get]
func (h *DashboardHandler) Welcome(c echo.Context) error {
	w := h.service.Welcome(c.Request().Context())
	return c.JSON(http.StatusOK, welcomeResponse{Message: w.Message, Timestamp: w.Timestamp.UTC()})
}

// Stats handles GET /v1/dashboard/stats.
//
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=ports.DashboardStats}
// @Failure      401  {object}  errorResponse
// @Router       /v1/dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Dashboard statistics retrieved successfully", stats)
}

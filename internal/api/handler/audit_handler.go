package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

// AuditHandler exposes the authentication audit trail.
type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /v1/audit/events, newest first.
//
// @Summary      List authentication events
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        username  query     string  false  "Filter by username"
// @Param        type      query     string  false  "Filter by event type"
// @Param        limit     query     int     false  "Maximum events (default 50, max 200)"
// @Success      200       {object}  auditEventsResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /v1/audit/events [get]
func (h *AuditHandler) List(c echo.Context) error {
	var q listAuditQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	events, err := h.service.List(c.Request().Context(), ports.AuditFilter{
		Username: q.Username,
		Type:     domain.AuthEventType(q.Type),
		Limit:    q.Limit,
	})
	if err != nil {
		return err
	}
	if events == nil {
		events = []*domain.AuthEvent{}
	}

	return c.JSON(http.StatusOK, auditEventsResponse{Events: events, Count: len(events)})
}

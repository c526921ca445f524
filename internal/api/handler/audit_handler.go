package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/task-api/internal/core/ports"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditHandler exposes the audit trail to administrators. The access policy
// restricts its route to the ADMIN role.
type AuditHandler struct {
	store ports.AuditStore
}

func NewAuditHandler(store ports.AuditStore) *AuditHandler {
	return &AuditHandler{store: store}
}

// List handles GET /api/admin/audit.
//
// @Summary      List recent audit events
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum events to return (default 50, cap 500)"
// @Success      200    {array}   domain.AuditEvent
// @Failure      403    {object}  map[string]any
// @Router       /api/admin/audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	limit := defaultAuditLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxAuditLimit)
	}

	events, err := h.store.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/contentstudio-dev/gateway/internal/domain"
	"github.com/contentstudio-dev/gateway/internal/repository"
)

// QueryAudit returns audit events in append order. Supports optional
// ?type= (repeatable) and ?limit= filters.
func (h *Handler) QueryAudit(c echo.Context) error {
	filter := store.AuditFilter{}

	if types, ok := c.QueryParams()["type"]; ok {
		filter.Types = types
	}
	if l := c.QueryParam("limit"); l != "" {
		val, err := strconv.Atoi(l)
		if err != nil || val < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		filter.Limit = val
	}

	ctx := c.Request().Context()

	events, err := h.service.QueryAudit(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}

	return c.JSON(http.StatusOK, domain.AuditQueryResponse{OK: true, Events: events})
}

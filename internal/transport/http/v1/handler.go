// Package v1 provides HTTP handlers for the gateway.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/contentstudio-dev/gateway/internal/service"
	"github.com/contentstudio-dev/gateway/internal/stream"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	hub     *stream.Hub
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, hub *stream.Hub) *Handler {
	return &Handler{
		service: svc,
		hub:     hub,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Tool gateway
	e.POST("/v1/tools/:tool_id/execute", h.ExecuteTool)
	e.GET("/v1/tools", h.ListTools)
	e.GET("/v1/limits/:role/:tool_id", h.BucketStatus)

	// Approval review
	e.GET("/v1/approvals", h.ListApprovals)
	e.PATCH("/v1/approvals/:approval_id", h.ResolveApproval)

	// Audit
	e.GET("/v1/audit", h.QueryAudit)

	// Operator notification stream
	e.GET("/v1/stream", h.Stream)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

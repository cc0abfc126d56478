package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

// statusCodes maps gateway outcomes onto HTTP codes. Denials get specific
// codes so the calling UI can distinguish "not allowed" from "try later".
var statusCodes = map[domain.InvokeStatus]int{
	domain.InvokeStatusCompleted:        http.StatusOK,
	domain.InvokeStatusQueued:           http.StatusOK,
	domain.InvokeStatusAwaitingApproval: http.StatusOK,
	domain.InvokeStatusRateLimited:      http.StatusTooManyRequests,
	domain.InvokeStatusForbidden:        http.StatusForbidden,
	domain.InvokeStatusUnknownTool:      http.StatusBadRequest,
}

// ExecuteTool handles gateway tool invocation.
func (h *Handler) ExecuteTool(c echo.Context) error {
	toolID := c.Param("tool_id")

	var req domain.ToolExecuteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Role == "" {
		req.Role = "assistant"
	}

	ctx := c.Request().Context()

	resp, err := h.service.ExecuteTool(ctx, toolID, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if rl, ok := h.service.BucketStatus(req.Role, toolID); ok {
		c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
	}

	code, ok := statusCodes[resp.Status]
	if !ok {
		code = http.StatusOK
	}
	return c.JSON(code, resp)
}

// ListTools returns the policy table.
func (h *Handler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.ListToolsResponse{
		OK:    true,
		Tools: h.service.ListPolicies(),
	})
}

// BucketStatus reports the rate-limit bucket for a (role, tool) pair.
func (h *Handler) BucketStatus(c echo.Context) error {
	role := c.Param("role")
	toolID := c.Param("tool_id")

	res, ok := h.service.BucketStatus(role, toolID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bucket not found"})
	}

	return c.JSON(http.StatusOK, domain.BucketStatusResponse{
		OK:        true,
		Limit:     res.Limit,
		Remaining: res.Remaining,
		ResetInMs: res.ResetIn.Milliseconds(),
		Key:       role + ":" + toolID,
	})
}

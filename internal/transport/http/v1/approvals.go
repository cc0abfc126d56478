package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/contentstudio-dev/gateway/internal/domain"
	"github.com/contentstudio-dev/gateway/internal/repository"
)

// ListApprovals returns all approval records.
func (h *Handler) ListApprovals(c echo.Context) error {
	ctx := c.Request().Context()

	approvals, err := h.service.ListApprovals(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if approvals == nil {
		approvals = []domain.Approval{}
	}

	return c.JSON(http.StatusOK, domain.ListApprovalsResponse{OK: true, Approvals: approvals})
}

// ResolveApproval handles an operator decision on a pending approval.
func (h *Handler) ResolveApproval(c echo.Context) error {
	approvalID := c.Param("approval_id")

	var req domain.ApprovalResolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Status != string(domain.ApprovalStatusApproved) && req.Status != string(domain.ApprovalStatusRejected) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status must be approved or rejected"})
	}

	ctx := c.Request().Context()

	approval, result, err := h.service.ResolveApproval(ctx, approvalID, req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not_found"})
		case errors.Is(err, store.ErrAlreadyResolved):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"error":    "already_resolved",
				"approval": approval,
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, domain.ApprovalResolveResponse{
		OK:       true,
		Approval: approval,
		Result:   result,
	})
}

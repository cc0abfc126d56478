package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

// createPendingApproval parks an approval for code.proposeEdit and returns
// its id.
func createPendingApproval(t *testing.T, e *echo.Echo, h *Handler) string {
	t.Helper()

	rec := executeTool(t, e, h, "code.proposeEdit", "assistant")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ToolExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, domain.InvokeStatusAwaitingApproval, resp.Status)
	require.NotEmpty(t, resp.ApprovalID)
	return resp.ApprovalID
}

func resolveApproval(t *testing.T, e *echo.Echo, h *Handler, approvalID string, req domain.ApprovalResolveRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest(http.MethodPatch, "/v1/approvals/"+approvalID, bytes.NewReader(body))
	httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(httpReq, rec)
	c.SetPath("/v1/approvals/:approval_id")
	c.SetParamNames("approval_id")
	c.SetParamValues(approvalID)

	require.NoError(t, h.ResolveApproval(c))
	return rec
}

func TestResolveApprovalApprove(t *testing.T) {
	ctx := context.Background()
	e := echo.New()
	h, db := newTestHandler(t)

	approvalID := createPendingApproval(t, e, h)

	rec := resolveApproval(t, e, h, approvalID, domain.ApprovalResolveRequest{
		Status:    "approved",
		DecidedBy: "operator-1",
		Reason:    "looks good",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ApprovalResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Approval)
	assert.Equal(t, domain.ApprovalStatusApproved, resp.Approval.Status)
	assert.Equal(t, "operator-1", resp.Approval.DecidedBy)
	assert.NotEmpty(t, resp.Result, "approved sandboxed tool reports the queued job")

	stored, err := db.GetApproval(ctx, approvalID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.ApprovalStatusApproved, stored.Status)
	assert.NotNil(t, stored.UpdatedAt)
}

func TestResolveApprovalReject(t *testing.T) {
	ctx := context.Background()
	e := echo.New()
	h, db := newTestHandler(t)

	approvalID := createPendingApproval(t, e, h)

	rec := resolveApproval(t, e, h, approvalID, domain.ApprovalResolveRequest{
		Status: "rejected",
		Reason: "too risky",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ApprovalResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Result, "rejected approvals never execute")

	stored, err := db.GetApproval(ctx, approvalID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalStatusRejected, stored.Status)
	assert.Equal(t, "too risky", stored.Reason)
}

func TestResolveApprovalConflict(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	approvalID := createPendingApproval(t, e, h)

	rec := resolveApproval(t, e, h, approvalID, domain.ApprovalResolveRequest{Status: "rejected"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Terminal approvals refuse a second decision, whatever it is.
	rec = resolveApproval(t, e, h, approvalID, domain.ApprovalResolveRequest{Status: "approved"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var conflict struct {
		Error    string           `json:"error"`
		Approval *domain.Approval `json:"approval"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, "already_resolved", conflict.Error)
	require.NotNil(t, conflict.Approval)
	assert.Equal(t, domain.ApprovalStatusRejected, conflict.Approval.Status)
}

func TestResolveApprovalNotFound(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	rec := resolveApproval(t, e, h, "ap_missing", domain.ApprovalResolveRequest{Status: "approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveApprovalInvalidStatus(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	approvalID := createPendingApproval(t, e, h)

	rec := resolveApproval(t, e, h, approvalID, domain.ApprovalResolveRequest{Status: "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListApprovals(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/approvals", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.ListApprovals(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"approvals":[]`)

	first := createPendingApproval(t, e, h)
	second := createPendingApproval(t, e, h)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	require.NoError(t, h.ListApprovals(c))

	var resp domain.ListApprovalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Approvals, 2)
	assert.Equal(t, first, resp.Approvals[0].ID)
	assert.Equal(t, second, resp.Approvals[1].ID)
}

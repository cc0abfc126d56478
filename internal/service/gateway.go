package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contentstudio-dev/gateway/internal/domain"
	"github.com/contentstudio-dev/gateway/internal/ratelimit"
)

// ExecuteTool runs the gateway decision sequence for one invocation:
// policy lookup, role authorization, rate limiting, then either approval
// creation or hand-off to the execution backend. Denials are result values;
// only persistence and execution failures surface as errors.
func (s *Service) ExecuteTool(ctx context.Context, toolID string, req domain.ToolExecuteRequest) (*domain.ToolExecuteResponse, error) {
	decision, err := s.engine.Evaluate(ctx, toolID, req.Role)
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}

	switch decision {
	case domain.DecisionUnknownTool:
		return &domain.ToolExecuteResponse{
			OK:     false,
			Status: domain.InvokeStatusUnknownTool,
			Error:  &domain.ToolError{Code: "unknown_tool", Message: "no policy for tool " + toolID},
		}, nil
	case domain.DecisionForbidden:
		return &domain.ToolExecuteResponse{
			OK:     false,
			Status: domain.InvokeStatusForbidden,
			Error:  &domain.ToolError{Code: "forbidden", Message: fmt.Sprintf("role %s may not invoke %s", req.Role, toolID)},
		}, nil
	}

	pol, ok := s.registry.Lookup(toolID)
	if !ok {
		// Engine and registry share the table; this cannot diverge.
		return nil, fmt.Errorf("policy missing for decided tool %s", toolID)
	}

	res := s.limiter.TryAcquire(req.Role, toolID, pol.RateLimit.Limit, pol.RateLimit.Window())
	if !res.Allowed {
		if err := s.recordAudit(ctx, domain.AuditEventRateLimit, map[string]interface{}{
			"key":     ratelimit.Key(req.Role, toolID),
			"tool_id": toolID,
			"role":    req.Role,
		}); err != nil {
			return nil, err
		}
		return &domain.ToolExecuteResponse{
			OK:     false,
			Status: domain.InvokeStatusRateLimited,
			Error:  &domain.ToolError{Code: "rate_limited", Message: "rate limit exceeded, retry after window"},
		}, nil
	}

	if decision == domain.DecisionRequireApproval {
		return s.createApproval(ctx, toolID, req)
	}

	result, err := s.dispatcher.Execute(ctx, pol.Execution, toolID, req.Params)
	if err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}

	if err := s.recordAudit(ctx, domain.AuditEventToolExecute, map[string]interface{}{
		"tool_id":   toolID,
		"role":      req.Role,
		"execution": pol.Execution,
	}); err != nil {
		return nil, err
	}

	status := domain.InvokeStatusCompleted
	if pol.Execution == domain.ExecutionTargetSandboxed {
		status = domain.InvokeStatusQueued
	}
	return &domain.ToolExecuteResponse{
		OK:        true,
		Status:    status,
		Execution: pol.Execution,
		Result:    result,
	}, nil
}

func (s *Service) createApproval(ctx context.Context, toolID string, req domain.ToolExecuteRequest) (*domain.ToolExecuteResponse, error) {
	approval := &domain.Approval{
		ID:        "ap_" + uuid.New().String(),
		ToolID:    toolID,
		Role:      req.Role,
		Params:    req.Params,
		Status:    domain.ApprovalStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateApproval(ctx, approval); err != nil {
		return nil, fmt.Errorf("failed to create approval: %w", err)
	}

	if err := s.recordAudit(ctx, domain.AuditEventApprovalCreate, map[string]interface{}{
		"approval_id": approval.ID,
		"tool_id":     toolID,
		"role":        req.Role,
	}); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(domain.StreamNotice{
			Type:     "approval.pending",
			Ts:       time.Now().UnixMilli(),
			Approval: approval,
		})
	}

	return &domain.ToolExecuteResponse{
		OK:         true,
		Status:     domain.InvokeStatusAwaitingApproval,
		ApprovalID: approval.ID,
	}, nil
}

// BucketStatus reports the current rate-limit bucket for a (role, tool) pair
// without consuming a token.
func (s *Service) BucketStatus(role, toolID string) (ratelimit.Result, bool) {
	return s.limiter.Status(role, toolID)
}

// ListPolicies returns the policy table.
func (s *Service) ListPolicies() []domain.ToolPolicy {
	return s.registry.List()
}

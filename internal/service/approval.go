package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

// ResolveApproval transitions a pending approval to approved or rejected.
// Exactly one concurrent caller wins the transition; the store reports
// ErrAlreadyResolved to the rest together with the record as it stands.
// When the decision is approved, the tool is executed through its policy's
// target before returning; the execution result rides along in the response.
func (s *Service) ResolveApproval(ctx context.Context, approvalID string, req domain.ApprovalResolveRequest) (*domain.Approval, json.RawMessage, error) {
	status := domain.ApprovalStatus(strings.ToLower(req.Status))
	if status != domain.ApprovalStatusApproved && status != domain.ApprovalStatusRejected {
		return nil, nil, fmt.Errorf("status must be approved or rejected")
	}

	approval, err := s.store.ResolveApproval(ctx, approvalID, status, req.DecidedBy, req.Reason)
	if err != nil {
		// ErrNotFound and ErrAlreadyResolved pass through for the transport
		// to map; ErrAlreadyResolved still carries the current record.
		return approval, nil, err
	}

	if err := s.recordAudit(ctx, domain.AuditEventApprovalResolve, map[string]interface{}{
		"approval_id": approvalID,
		"tool_id":     approval.ToolID,
		"status":      status,
		"decided_by":  req.DecidedBy,
	}); err != nil {
		return nil, nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(domain.StreamNotice{
			Type:     "approval.resolved",
			Ts:       time.Now().UnixMilli(),
			Approval: approval,
		})
	}

	if status != domain.ApprovalStatusApproved {
		return approval, nil, nil
	}

	// Approved: run the deferred execution now. The resolution itself is
	// already durable; an execution failure does not un-resolve it.
	pol, ok := s.registry.Lookup(approval.ToolID)
	if !ok {
		return approval, nil, fmt.Errorf("no policy for tool %s", approval.ToolID)
	}
	result, err := s.dispatcher.Execute(ctx, pol.Execution, approval.ToolID, approval.Params)
	if err != nil {
		return approval, nil, fmt.Errorf("approved execution failed: %w", err)
	}

	if err := s.recordAudit(ctx, domain.AuditEventToolExecute, map[string]interface{}{
		"tool_id":     approval.ToolID,
		"role":        approval.Role,
		"execution":   pol.Execution,
		"approval_id": approvalID,
	}); err != nil {
		return nil, nil, err
	}

	return approval, result, nil
}

// ListApprovals returns all approval records in insertion order.
func (s *Service) ListApprovals(ctx context.Context) ([]domain.Approval, error) {
	approvals, err := s.store.ListApprovals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	return approvals, nil
}

// GetApproval retrieves a single approval. Returns nil when absent.
func (s *Service) GetApproval(ctx context.Context, approvalID string) (*domain.Approval, error) {
	return s.store.GetApproval(ctx, approvalID)
}

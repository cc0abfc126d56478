// Package domain defines the core domain models for the gateway.
package domain

// ApprovalStatus represents the status of an approval request.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// IsTerminal reports whether the status is terminal. Approved and rejected
// approvals never transition again.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// InvokeStatus represents the outcome of a gateway invocation.
type InvokeStatus string

const (
	InvokeStatusCompleted        InvokeStatus = "completed"
	InvokeStatusQueued           InvokeStatus = "queued"
	InvokeStatusAwaitingApproval InvokeStatus = "awaiting_approval"
	InvokeStatusRateLimited      InvokeStatus = "rate_limited"
	InvokeStatusForbidden        InvokeStatus = "forbidden"
	InvokeStatusUnknownTool      InvokeStatus = "unknown_tool"
)

// ExecutionTarget identifies the backend that performs a tool's side effect.
type ExecutionTarget string

const (
	ExecutionTargetLocal     ExecutionTarget = "local"
	ExecutionTargetSandboxed ExecutionTarget = "sandboxed"
	ExecutionTargetRemote    ExecutionTarget = "remote"
)

// Decision represents the policy engine's verdict for an invocation.
type Decision string

const (
	DecisionAllow           Decision = "allow"
	DecisionRequireApproval Decision = "require_approval"
	DecisionForbidden       Decision = "forbidden"
	DecisionUnknownTool     Decision = "unknown_tool"
)

// AuditEventType represents the type of an audit event.
type AuditEventType string

const (
	AuditEventToolExecute     AuditEventType = "tool.execute"
	AuditEventApprovalCreate  AuditEventType = "approval.create"
	AuditEventApprovalResolve AuditEventType = "approval.resolve"
	AuditEventRateLimit       AuditEventType = "rate.limit"
)

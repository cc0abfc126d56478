package domain

import "encoding/json"

// ToolExecuteRequest represents a request to invoke a tool through the gateway.
type ToolExecuteRequest struct {
	Role   string          `json:"role"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ToolExecuteResponse represents the gateway's decision for an invocation.
type ToolExecuteResponse struct {
	OK         bool            `json:"ok"`
	Status     InvokeStatus    `json:"status"`
	ApprovalID string          `json:"approval_id,omitempty"`
	Execution  ExecutionTarget `json:"execution,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      *ToolError      `json:"error,omitempty"`
}

// ToolError represents a tool invocation error.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ApprovalResolveRequest represents an operator decision on a pending approval.
type ApprovalResolveRequest struct {
	Status    string `json:"status"` // approved or rejected
	DecidedBy string `json:"decided_by,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// ApprovalResolveResponse represents the response after resolving an approval.
type ApprovalResolveResponse struct {
	OK       bool      `json:"ok"`
	Approval *Approval `json:"approval"`
	// Result carries the execution output when an approved tool ran inline.
	Result json.RawMessage `json:"result,omitempty"`
}

// ListApprovalsResponse represents the approval listing.
type ListApprovalsResponse struct {
	OK        bool       `json:"ok"`
	Approvals []Approval `json:"approvals"`
}

// ListToolsResponse represents the policy listing.
type ListToolsResponse struct {
	OK    bool         `json:"ok"`
	Tools []ToolPolicy `json:"tools"`
}

// AuditQueryResponse represents the audit log query result.
type AuditQueryResponse struct {
	OK     bool         `json:"ok"`
	Events []AuditEvent `json:"events"`
}

// BucketStatusResponse reports the current state of a rate-limit bucket.
type BucketStatusResponse struct {
	OK        bool   `json:"ok"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetInMs int64  `json:"reset_in_ms"`
	Key       string `json:"key"`
}

// StreamNotice is pushed to connected operator UIs when approvals change.
type StreamNotice struct {
	Type     string    `json:"type"` // approval.pending or approval.resolved
	Ts       int64     `json:"ts"`
	Approval *Approval `json:"approval"`
}

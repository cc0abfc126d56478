package domain

import (
	"encoding/json"
	"time"
)

// RateLimit holds the token bucket parameters for a tool.
type RateLimit struct {
	Limit     int `json:"limit" yaml:"limit"`
	WindowSec int `json:"window_sec" yaml:"window_sec"`
}

// Window returns the refill window as a duration.
func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

// ToolPolicy is the immutable per-tool rule set. Policies are loaded once at
// startup and never mutated afterwards.
type ToolPolicy struct {
	ID               string          `json:"id" yaml:"id"`
	Description      string          `json:"description,omitempty" yaml:"description"`
	RolesAllowed     []string        `json:"roles_allowed" yaml:"roles_allowed"`
	ApprovalRequired bool            `json:"approval_required" yaml:"approval_required"`
	RateLimit        RateLimit       `json:"rate_limit" yaml:"rate_limit"`
	Execution        ExecutionTarget `json:"execution" yaml:"execution"`
}

// AllowsRole reports whether the role may invoke the tool.
func (p ToolPolicy) AllowsRole(role string) bool {
	for _, r := range p.RolesAllowed {
		if r == role {
			return true
		}
	}
	return false
}

// Approval represents a human-gated decision pending for a tool invocation.
type Approval struct {
	ID        string          `json:"id"`
	ToolID    string          `json:"tool_id"`
	Role      string          `json:"role"`
	Params    json.RawMessage `json:"params,omitempty"`
	Status    ApprovalStatus  `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
	DecidedBy string          `json:"decided_by,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// AuditEvent is an append-only record of a gateway decision or execution.
type AuditEvent struct {
	ID   string          `json:"id"`
	Type AuditEventType  `json:"type"`
	Ts   int64           `json:"ts"` // Unix milliseconds
	Data json.RawMessage `json:"data,omitempty"`
}

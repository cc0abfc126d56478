// Package store provides durable persistence for approvals and audit events.
package store

import (
	"context"
	"errors"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

var (
	// ErrNotFound is returned when no approval exists for an id.
	ErrNotFound = errors.New("approval not found")
	// ErrAlreadyResolved is returned when resolving an approval that already
	// reached a terminal status. The first decision is binding.
	ErrAlreadyResolved = errors.New("approval already resolved")
)

// AuditFilter narrows an audit log query. Zero values mean no filtering.
type AuditFilter struct {
	Types []string
	Limit int
}

// Store is the persistence boundary for the gateway. Implementations must
// make ResolveApproval atomic: exactly one concurrent caller wins the
// pending-to-terminal transition.
type Store interface {
	CreateApproval(ctx context.Context, approval *domain.Approval) error
	GetApproval(ctx context.Context, approvalID string) (*domain.Approval, error)
	ListApprovals(ctx context.Context) ([]domain.Approval, error)
	ResolveApproval(ctx context.Context, approvalID string, status domain.ApprovalStatus, decidedBy, reason string) (*domain.Approval, error)

	AppendAuditEvent(ctx context.Context, event *domain.AuditEvent) error
	QueryAuditEvents(ctx context.Context, filter AuditFilter) ([]domain.AuditEvent, error)

	Close() error
}

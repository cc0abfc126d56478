package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/contentstudio-dev/gateway/internal/domain"
	"github.com/contentstudio-dev/gateway/internal/repository"
)

// recordAudit appends a decision event to the audit log. The write is
// synchronous and checked: a failure here must keep the surrounding decision
// from being reported as success.
func (s *Service) recordAudit(ctx context.Context, eventType domain.AuditEventType, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal audit data: %w", err)
	}

	event := &domain.AuditEvent{
		ID:   "evt_" + ulid.Make().String(),
		Type: eventType,
		Ts:   time.Now().UnixMilli(),
		Data: payload,
	}
	if err := s.store.AppendAuditEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// QueryAudit returns audit events in append order.
func (s *Service) QueryAudit(ctx context.Context, filter store.AuditFilter) ([]domain.AuditEvent, error) {
	events, err := s.store.QueryAuditEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	return events, nil
}

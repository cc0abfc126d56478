package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func pendingApproval(id, toolID, role string) *domain.Approval {
	return &domain.Approval{
		ID:        id,
		ToolID:    toolID,
		Role:      role,
		Params:    json.RawMessage(`{"title":"hello"}`),
		Status:    domain.ApprovalStatusPending,
		CreatedAt: time.Now(),
	}
}

func TestSQLiteStoreApprovals(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateApproval(ctx, pendingApproval("ap_1", "cms.createPost", "marketing")); err != nil {
		t.Fatalf("CreateApproval failed: %v", err)
	}
	if err := store.CreateApproval(ctx, pendingApproval("ap_2", "code.proposeEdit", "owner")); err != nil {
		t.Fatalf("CreateApproval failed: %v", err)
	}

	got, err := store.GetApproval(ctx, "ap_1")
	if err != nil {
		t.Fatalf("GetApproval failed: %v", err)
	}
	if got == nil || got.Status != domain.ApprovalStatusPending || got.ToolID != "cms.createPost" {
		t.Fatalf("unexpected approval: %+v", got)
	}
	if got.UpdatedAt != nil {
		t.Fatalf("updated_at must be unset before any transition")
	}

	missing, err := store.GetApproval(ctx, "ap_nope")
	if err != nil {
		t.Fatalf("GetApproval failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing approval, got %+v", missing)
	}

	list, err := store.ListApprovals(ctx)
	if err != nil {
		t.Fatalf("ListApprovals failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "ap_1" || list[1].ID != "ap_2" {
		t.Fatalf("expected insertion order [ap_1 ap_2], got %+v", list)
	}
}

func TestResolveApproval(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateApproval(ctx, pendingApproval("ap_1", "cms.createPost", "marketing")); err != nil {
		t.Fatalf("CreateApproval failed: %v", err)
	}

	ap, err := store.ResolveApproval(ctx, "ap_1", domain.ApprovalStatusApproved, "operator@studio", "looks good")
	if err != nil {
		t.Fatalf("ResolveApproval failed: %v", err)
	}
	if ap.Status != domain.ApprovalStatusApproved {
		t.Fatalf("expected approved, got %s", ap.Status)
	}
	if ap.UpdatedAt == nil {
		t.Fatalf("updated_at must be set on transition")
	}
	if ap.DecidedBy != "operator@studio" || ap.Reason != "looks good" {
		t.Fatalf("unexpected decision metadata: %+v", ap)
	}
}

func TestResolveApprovalRejectsTerminal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateApproval(ctx, pendingApproval("ap_1", "cms.createPost", "marketing")); err != nil {
		t.Fatalf("CreateApproval failed: %v", err)
	}
	if _, err := store.ResolveApproval(ctx, "ap_1", domain.ApprovalStatusApproved, "", ""); err != nil {
		t.Fatalf("ResolveApproval failed: %v", err)
	}

	ap, err := store.ResolveApproval(ctx, "ap_1", domain.ApprovalStatusRejected, "", "changed my mind")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if ap == nil || ap.Status != domain.ApprovalStatusApproved {
		t.Fatalf("first decision must be binding, got %+v", ap)
	}
}

func TestResolveApprovalNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.ResolveApproval(ctx, "ap_nope", domain.ApprovalStatusApproved, "", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveApprovalConcurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateApproval(ctx, pendingApproval("ap_1", "cms.createPost", "marketing")); err != nil {
		t.Fatalf("CreateApproval failed: %v", err)
	}

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	losers := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ResolveApproval(ctx, "ap_1", domain.ApprovalStatusApproved, "op", "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, ErrAlreadyResolved):
				losers++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if winners != 1 || losers != callers-1 {
		t.Fatalf("expected exactly one winner, got winners=%d losers=%d", winners, losers)
	}
}

func TestAuditAppendAndQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	types := []domain.AuditEventType{
		domain.AuditEventToolExecute,
		domain.AuditEventApprovalCreate,
		domain.AuditEventRateLimit,
	}
	for i, typ := range types {
		event := &domain.AuditEvent{
			ID:   "evt_" + string(rune('a'+i)),
			Type: typ,
			Ts:   time.Now().UnixMilli(),
			Data: json.RawMessage(`{"n":1}`),
		}
		if err := store.AppendAuditEvent(ctx, event); err != nil {
			t.Fatalf("AppendAuditEvent failed: %v", err)
		}
	}

	events, err := store.QueryAuditEvents(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("QueryAuditEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, typ := range types {
		if events[i].Type != typ {
			t.Fatalf("append order violated at %d: %s", i, events[i].Type)
		}
	}

	filtered, err := store.QueryAuditEvents(ctx, AuditFilter{Types: []string{string(domain.AuditEventRateLimit)}})
	if err != nil {
		t.Fatalf("QueryAuditEvents failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Type != domain.AuditEventRateLimit {
		t.Fatalf("unexpected filtered events: %+v", filtered)
	}

	limited, err := store.QueryAuditEvents(ctx, AuditFilter{Limit: 2})
	if err != nil {
		t.Fatalf("QueryAuditEvents failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 events, got %d", len(limited))
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "gateway.db")

	store, err := NewSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.CreateApproval(ctx, pendingApproval("ap_1", "cms.createPost", "marketing")); err != nil {
		t.Fatalf("CreateApproval failed: %v", err)
	}
	if err := store.AppendAuditEvent(ctx, &domain.AuditEvent{ID: "evt_1", Type: domain.AuditEventApprovalCreate, Ts: time.Now().UnixMilli()}); err != nil {
		t.Fatalf("AppendAuditEvent failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	list, err := reopened.ListApprovals(ctx)
	if err != nil {
		t.Fatalf("ListApprovals failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "ap_1" {
		t.Fatalf("approvals did not survive reopen: %+v", list)
	}

	events, err := reopened.QueryAuditEvents(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("QueryAuditEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("audit events did not survive reopen: %+v", events)
	}
}

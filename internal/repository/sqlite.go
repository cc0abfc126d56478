package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS approvals (
			approval_id TEXT PRIMARY KEY,
			tool_id TEXT NOT NULL,
			role TEXT NOT NULL,
			params TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME,
			decided_by TEXT,
			reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_approvals_status ON approvals(status, created_at)`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			event_id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			ts INTEGER NOT NULL,
			data TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(type)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateApproval inserts a new approval record.
func (s *SQLiteStore) CreateApproval(ctx context.Context, approval *domain.Approval) error {
	var params sql.NullString
	if len(approval.Params) > 0 {
		params = sql.NullString{String: string(approval.Params), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approvals (approval_id, tool_id, role, params, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		approval.ID, approval.ToolID, approval.Role, params, approval.Status, approval.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert approval: %w", err)
	}
	return nil
}

// GetApproval retrieves an approval by id. Returns nil when no record exists.
func (s *SQLiteStore) GetApproval(ctx context.Context, approvalID string) (*domain.Approval, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT approval_id, tool_id, role, params, status, created_at, updated_at, decided_by, reason
		 FROM approvals WHERE approval_id = ?`, approvalID)
	ap, err := scanApproval(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ap, nil
}

// ListApprovals returns all approvals in insertion order.
func (s *SQLiteStore) ListApprovals(ctx context.Context) ([]domain.Approval, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT approval_id, tool_id, role, params, status, created_at, updated_at, decided_by, reason
		 FROM approvals ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []domain.Approval
	for rows.Next() {
		ap, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, *ap)
	}
	return approvals, rows.Err()
}

// ResolveApproval transitions a pending approval to a terminal status. The
// conditional update guarantees exactly one concurrent caller wins; losers
// get ErrAlreadyResolved together with the record as it stands.
func (s *SQLiteStore) ResolveApproval(ctx context.Context, approvalID string, status domain.ApprovalStatus, decidedBy, reason string) (*domain.Approval, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE approvals SET status = ?, updated_at = ?, decided_by = ?, reason = ? WHERE approval_id = ? AND status = ?`,
		status, now, nullString(decidedBy), nullString(reason), approvalID, domain.ApprovalStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to update approval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	ap, err := s.GetApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if ap == nil {
		return nil, ErrNotFound
	}
	if affected == 0 {
		return ap, ErrAlreadyResolved
	}
	return ap, nil
}

// AppendAuditEvent appends an event to the audit log. The write is checked;
// a failed append must never be reported as success.
func (s *SQLiteStore) AppendAuditEvent(ctx context.Context, event *domain.AuditEvent) error {
	var data sql.NullString
	if len(event.Data) > 0 {
		data = sql.NullString{String: string(event.Data), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (event_id, type, ts, data) VALUES (?, ?, ?, ?)`,
		event.ID, event.Type, event.Ts, data)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// QueryAuditEvents returns audit events in append order.
func (s *SQLiteStore) QueryAuditEvents(ctx context.Context, filter AuditFilter) ([]domain.AuditEvent, error) {
	query := `SELECT event_id, type, ts, data FROM audit_events`
	var args []interface{}

	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		query += fmt.Sprintf(" WHERE type IN (%s)", strings.Join(placeholders, ","))
	}

	query += ` ORDER BY rowid ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var event domain.AuditEvent
		var data sql.NullString
		if err := rows.Scan(&event.ID, &event.Type, &event.Ts, &data); err != nil {
			return nil, err
		}
		if data.Valid {
			event.Data = json.RawMessage(data.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApproval(row rowScanner) (*domain.Approval, error) {
	var ap domain.Approval
	var params, decidedBy, reason sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(&ap.ID, &ap.ToolID, &ap.Role, &params, &ap.Status, &ap.CreatedAt, &updatedAt, &decidedBy, &reason)
	if err != nil {
		return nil, err
	}
	if params.Valid {
		ap.Params = json.RawMessage(params.String)
	}
	if updatedAt.Valid {
		ap.UpdatedAt = &updatedAt.Time
	}
	if decidedBy.Valid {
		ap.DecidedBy = decidedBy.String
	}
	if reason.Valid {
		ap.Reason = reason.String
	}
	return &ap, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/campuscare/wellbeing-hub/internal/domain/audit"
)

// AuditRepository implements audit.Repository for PostgreSQL.
// The table is append-only; there is no update or delete.
type AuditRepository struct {
	db DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ audit.Repository = (*AuditRepository)(nil)

const auditColumns = `id, user_id, entity_type, entity_id, action_type, created_at, details`

// Append writes one entry.
func (r *AuditRepository) Append(ctx context.Context, l *audit.Log) (int64, error) {
	query := `
		INSERT INTO audit_logs (user_id, entity_type, entity_id, action_type, created_at, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		l.UserID,
		l.EntityType,
		l.EntityID,
		string(l.Action),
		l.Timestamp,
		l.Details,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to append audit log: %w", err)
	}

	return id, nil
}

// ListRecent returns up to limit entries, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*audit.Log, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + auditColumns + ` FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

// ListByUser returns a user's entries, newest first.
func (r *AuditRepository) ListByUser(ctx context.Context, userID int64) ([]*audit.Log, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

func (r *AuditRepository) list(ctx context.Context, query string, args ...interface{}) ([]*audit.Log, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*audit.Log, 0)
	for rows.Next() {
		var (
			l      audit.Log
			action string
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.EntityType, &l.EntityID, &action, &l.Timestamp, &l.Details); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		l.Action = audit.ActionType(action)
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

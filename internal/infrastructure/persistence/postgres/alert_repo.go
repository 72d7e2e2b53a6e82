package postgres

import (
	"context"
	"fmt"

	"github.com/campuscare/wellbeing-hub/internal/domain/alert"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
)

// AlertRepository implements alert.Repository for PostgreSQL.
type AlertRepository struct {
	db DB
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db DB) *AlertRepository {
	return &AlertRepository{db: db}
}

var _ alert.Repository = (*AlertRepository)(nil)

const alertColumns = `id, student_id, alert_type, reason, created_at, resolved`

// Create raises an alert.
func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) (int64, error) {
	query := `
		INSERT INTO alerts (student_id, alert_type, reason, created_at, resolved)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, a.StudentID, string(a.Type), a.Reason, a.CreatedAt, a.Resolved).Scan(&id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return 0, shared.ErrStudentNotFound
		}
		return 0, fmt.Errorf("failed to create alert: %w", err)
	}

	return id, nil
}

// ListByStudent returns a student's alerts, oldest first.
func (r *AlertRepository) ListByStudent(ctx context.Context, studentID int64) ([]*alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE student_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, studentID)
}

// ListOpen returns every unresolved alert, oldest first.
func (r *AlertRepository) ListOpen(ctx context.Context) ([]*alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE NOT resolved ORDER BY created_at, id`
	return r.list(ctx, query)
}

// Resolve flips an open alert to resolved. Resolved alerts are never reopened.
func (r *AlertRepository) Resolve(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE alerts SET resolved = TRUE WHERE id = $1 AND NOT resolved`, id)
	if err != nil {
		return false, fmt.Errorf("failed to resolve alert %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *AlertRepository) list(ctx context.Context, query string, args ...interface{}) ([]*alert.Alert, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*alert.Alert, 0)
	for rows.Next() {
		var (
			a  alert.Alert
			ty string
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &ty, &a.Reason, &a.CreatedAt, &a.Resolved); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Type = alert.Type(ty)
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/campuscare/wellbeing-hub/internal/domain/coursework"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CourseworkRepository implements coursework.Repository for PostgreSQL.
type CourseworkRepository struct {
	db DB
}

// NewCourseworkRepository creates a new CourseworkRepository.
func NewCourseworkRepository(db DB) *CourseworkRepository {
	return &CourseworkRepository{db: db}
}

var _ coursework.Repository = (*CourseworkRepository)(nil)

const courseworkColumns = `id, student_id, module_code, assignment_name, submitted_on, status, grade`

// Create stores a coursework entry.
func (r *CourseworkRepository) Create(ctx context.Context, e *coursework.Entry) (int64, error) {
	query := `
		INSERT INTO coursework (student_id, module_code, assignment_name, submitted_on, status, grade)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		e.StudentID,
		e.ModuleCode,
		e.AssignmentName,
		pgtype.Date{Time: e.SubmittedOn, Valid: true},
		string(e.Status),
		e.Grade,
	).Scan(&id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return 0, shared.ErrStudentNotFound
		}
		return 0, fmt.Errorf("failed to add coursework: %w", err)
	}

	return id, nil
}

// GetByID returns one entry, or shared.ErrNotFound.
func (r *CourseworkRepository) GetByID(ctx context.Context, id int64) (*coursework.Entry, error) {
	query := `SELECT ` + courseworkColumns + ` FROM coursework WHERE id = $1`

	e, err := scanCoursework(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("coursework", "Find", shared.ErrNotFound, "coursework not found")
		}
		return nil, fmt.Errorf("failed to get coursework %d: %w", id, err)
	}
	return e, nil
}

// ListByStudent returns a student's entries ordered by submission date.
func (r *CourseworkRepository) ListByStudent(ctx context.Context, studentID int64) ([]*coursework.Entry, error) {
	query := `
		SELECT ` + courseworkColumns + `
		FROM coursework
		WHERE student_id = $1
		ORDER BY submitted_on, id
	`
	return r.list(ctx, query, studentID)
}

// ListAll returns every entry ordered by student then submission date.
func (r *CourseworkRepository) ListAll(ctx context.Context) ([]*coursework.Entry, error) {
	query := `
		SELECT ` + courseworkColumns + `
		FROM coursework
		ORDER BY student_id, submitted_on, id
	`
	return r.list(ctx, query)
}

func (r *CourseworkRepository) list(ctx context.Context, query string, args ...interface{}) ([]*coursework.Entry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list coursework: %w", err)
	}
	defer rows.Close()

	entries := make([]*coursework.Entry, 0)
	for rows.Next() {
		e, err := scanCoursework(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coursework: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Update applies the supplied fields only.
func (r *CourseworkRepository) Update(ctx context.Context, id int64, patch coursework.Patch) (int64, bool, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Grade != nil {
		set("grade", *patch.Grade)
	}
	if len(sets) == 0 {
		return 0, false, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE coursework SET %s WHERE id = $%d RETURNING student_id",
		strings.Join(sets, ", "), len(args))

	return returningStudent(r.db.QueryRow(ctx, query, args...), "update coursework", id)
}

// Delete removes one entry.
func (r *CourseworkRepository) Delete(ctx context.Context, id int64) (int64, bool, error) {
	query := `DELETE FROM coursework WHERE id = $1 RETURNING student_id`
	return returningStudent(r.db.QueryRow(ctx, query, id), "delete coursework", id)
}

func scanCoursework(row pgx.Row) (*coursework.Entry, error) {
	var (
		e      coursework.Entry
		date   pgtype.Date
		status string
	)
	err := row.Scan(&e.ID, &e.StudentID, &e.ModuleCode, &e.AssignmentName, &date, &status, &e.Grade)
	if err != nil {
		return nil, err
	}
	if date.Valid {
		e.SubmittedOn = date.Time
	}
	e.Status = coursework.Status(status)
	return &e, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/wellbeing"

	"github.com/jackc/pgx/v5"
)

// WellbeingRepository implements wellbeing.Repository for PostgreSQL.
type WellbeingRepository struct {
	db DB
}

// NewWellbeingRepository creates a new WellbeingRepository.
func NewWellbeingRepository(db DB) *WellbeingRepository {
	return &WellbeingRepository{db: db}
}

var _ wellbeing.Repository = (*WellbeingRepository)(nil)

const surveyColumns = `id, student_id, week_number, stress_level, sleep_hours, notes, source, surveyed_at`

// Create stores a survey response.
func (r *WellbeingRepository) Create(ctx context.Context, rec *wellbeing.Record) (int64, error) {
	query := `
		INSERT INTO wellbeing_surveys (student_id, week_number, stress_level, sleep_hours, notes, source, surveyed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		rec.StudentID,
		rec.Week,
		rec.StressLevel,
		rec.SleepHours,
		rec.Notes,
		rec.Source,
		rec.SurveyedAt,
	).Scan(&id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return 0, shared.ErrStudentNotFound
		}
		return 0, fmt.Errorf("failed to add survey: %w", err)
	}

	return id, nil
}

// GetByID returns one survey, or shared.ErrNotFound.
func (r *WellbeingRepository) GetByID(ctx context.Context, id int64) (*wellbeing.Record, error) {
	query := `SELECT ` + surveyColumns + ` FROM wellbeing_surveys WHERE id = $1`

	rec, err := scanSurvey(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("wellbeing", "Find", shared.ErrNotFound, "survey not found")
		}
		return nil, fmt.Errorf("failed to get survey %d: %w", id, err)
	}
	return rec, nil
}

// ListByStudent returns a student's surveys ordered by week.
func (r *WellbeingRepository) ListByStudent(ctx context.Context, studentID int64) ([]*wellbeing.Record, error) {
	query := `
		SELECT ` + surveyColumns + `
		FROM wellbeing_surveys
		WHERE student_id = $1
		ORDER BY week_number, id
	`
	return r.list(ctx, query, studentID)
}

// ListAll returns every survey ordered by student then week.
func (r *WellbeingRepository) ListAll(ctx context.Context) ([]*wellbeing.Record, error) {
	query := `
		SELECT ` + surveyColumns + `
		FROM wellbeing_surveys
		ORDER BY student_id, week_number, id
	`
	return r.list(ctx, query)
}

func (r *WellbeingRepository) list(ctx context.Context, query string, args ...interface{}) ([]*wellbeing.Record, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	defer rows.Close()

	records := make([]*wellbeing.Record, 0)
	for rows.Next() {
		rec, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Update applies the supplied fields only.
func (r *WellbeingRepository) Update(ctx context.Context, id int64, patch wellbeing.Patch) (int64, bool, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.StressLevel != nil {
		set("stress_level", *patch.StressLevel)
	}
	if patch.SleepHours != nil {
		set("sleep_hours", *patch.SleepHours)
	}
	if patch.Notes != nil {
		set("notes", strings.TrimSpace(*patch.Notes))
	}
	if len(sets) == 0 {
		return 0, false, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE wellbeing_surveys SET %s WHERE id = $%d RETURNING student_id",
		strings.Join(sets, ", "), len(args))

	return returningStudent(r.db.QueryRow(ctx, query, args...), "update survey", id)
}

// Delete removes one survey.
func (r *WellbeingRepository) Delete(ctx context.Context, id int64) (int64, bool, error) {
	query := `DELETE FROM wellbeing_surveys WHERE id = $1 RETURNING student_id`
	return returningStudent(r.db.QueryRow(ctx, query, id), "delete survey", id)
}

// Count returns the total number of surveys.
func (r *WellbeingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM wellbeing_surveys").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count surveys: %w", err)
	}
	return count, nil
}

func scanSurvey(row pgx.Row) (*wellbeing.Record, error) {
	var rec wellbeing.Record
	err := row.Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.Week,
		&rec.StressLevel,
		&rec.SleepHours,
		&rec.Notes,
		&rec.Source,
		&rec.SurveyedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

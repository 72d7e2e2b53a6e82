package postgres

import (
	"context"
	"fmt"

	"github.com/campuscare/wellbeing-hub/internal/domain/attendance"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// AttendanceRepository implements attendance.Repository for PostgreSQL.
type AttendanceRepository struct {
	db DB
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(db DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

const attendanceColumns = `id, student_id, week_number, module_code, status, recorded_at`

// Create records attendance for one session.
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (int64, error) {
	query := `
		INSERT INTO attendance (student_id, week_number, module_code, status, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		rec.StudentID,
		rec.Week,
		rec.ModuleCode,
		string(rec.Status),
		rec.RecordedAt,
	).Scan(&id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return 0, shared.ErrStudentNotFound
		}
		return 0, fmt.Errorf("failed to record attendance: %w", err)
	}

	return id, nil
}

// GetByID returns one record, or shared.ErrNotFound.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*attendance.Record, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE id = $1`

	rec, err := scanAttendance(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("attendance", "Find", shared.ErrNotFound, "attendance record not found")
		}
		return nil, fmt.Errorf("failed to get attendance %d: %w", id, err)
	}
	return rec, nil
}

// ListByStudent returns a student's records ordered by week.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]*attendance.Record, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE student_id = $1
		ORDER BY week_number, id
	`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]*attendance.Record, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListAll returns the full attendance dump with student names.
func (r *AttendanceRepository) ListAll(ctx context.Context) ([]*attendance.Entry, error) {
	query := `
		SELECT a.id, a.student_id, a.week_number, a.module_code, a.status, a.recorded_at, s.name
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		ORDER BY a.week_number, s.name, a.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to dump attendance: %w", err)
	}
	defer rows.Close()

	entries := make([]*attendance.Entry, 0)
	for rows.Next() {
		var (
			e      attendance.Entry
			status string
		)
		err := rows.Scan(&e.ID, &e.StudentID, &e.Week, &e.ModuleCode, &status, &e.RecordedAt, &e.StudentName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance entry: %w", err)
		}
		e.Status = attendance.Status(status)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// UpdateStatus corrects one record's status.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id int64, status attendance.Status) (int64, bool, error) {
	query := `UPDATE attendance SET status = $1 WHERE id = $2 RETURNING student_id`
	return returningStudent(r.db.QueryRow(ctx, query, string(status), id), "update attendance", id)
}

// Delete removes one record.
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) (int64, bool, error) {
	query := `DELETE FROM attendance WHERE id = $1 RETURNING student_id`
	return returningStudent(r.db.QueryRow(ctx, query, id), "delete attendance", id)
}

// Count returns the total number of attendance rows.
func (r *AttendanceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM attendance").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return count, nil
}

func scanAttendance(row pgx.Row) (*attendance.Record, error) {
	var (
		rec    attendance.Record
		status string
	)
	if err := row.Scan(&rec.ID, &rec.StudentID, &rec.Week, &rec.ModuleCode, &status, &rec.RecordedAt); err != nil {
		return nil, err
	}
	rec.Status = attendance.Status(status)
	return &rec, nil
}

// returningStudent reads the owning student of a row touched by an UPDATE or
// DELETE ... RETURNING student_id. No row means nothing was affected.
func returningStudent(row pgx.Row, op string, id int64) (int64, bool, error) {
	var studentID int64
	if err := row.Scan(&studentID); err != nil {
		if IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to %s %d: %w", op, id, err)
	}
	return studentID, true, nil
}

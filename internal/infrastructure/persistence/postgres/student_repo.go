package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// dependentTables hold rows owned by a student. They are cleared before the
// student row inside the same transaction.
var dependentTables = []string{"attendance", "wellbeing_surveys", "coursework", "alerts"}

const studentColumns = `id, name, email, enrollment_year, created_at`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	db DB
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db DB) *StudentRepository {
	return &StudentRepository{db: db}
}

var _ student.Repository = (*StudentRepository)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a student and returns the assigned ID.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) (int64, error) {
	query := `
		INSERT INTO students (name, email, enrollment_year, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, s.Name, s.Email, s.EnrollmentYear, s.CreatedAt).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, shared.ErrStudentAlreadyExists
		}
		return 0, fmt.Errorf("failed to create student: %w", err)
	}

	return id, nil
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	s, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	return s, nil
}

// GetAll returns every student ordered by ID.
func (r *StudentRepository) GetAll(ctx context.Context) ([]*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	return scanStudents(rows)
}

// Update applies the supplied fields only.
func (r *StudentRepository) Update(ctx context.Context, id int64, patch student.Patch) (bool, error) {
	patch = patch.Normalized()

	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.EnrollmentYear != nil {
		set("enrollment_year", *patch.EnrollmentYear)
	}
	if len(sets) == 0 {
		return false, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE students SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, shared.ErrStudentAlreadyExists
		}
		return false, fmt.Errorf("failed to update student %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// Delete removes the student and all dependent rows atomically.
func (r *StudentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool

	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, table := range dependentTables {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE student_id = $1", id); err != nil {
				return fmt.Errorf("failed to delete %s rows: %w", table, err)
			}
		}

		result, err := tx.Exec(ctx, "DELETE FROM students WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to delete student row: %w", err)
		}
		deleted = result.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete student %d: %w", id, err)
	}

	return deleted, nil
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Search
// ─────────────────────────────────────────────────────────────────────────────

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches term anywhere in name or email, ignoring case.
func (r *StudentRepository) Search(ctx context.Context, term string) ([]*student.Student, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"

	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE LOWER(name) LIKE $1 OR LOWER(email) LIKE $1
		ORDER BY name, id
	`

	rows, err := r.db.Query(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	defer rows.Close()

	return scanStudents(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.EnrollmentYear, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	students := make([]*student.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

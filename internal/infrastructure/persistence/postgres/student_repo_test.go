package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var studentCols = []string{"id", "name", "email", "enrollment_year", "created_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestStudentRepository_CreateAndGet(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)
	ctx := context.Background()

	s, err := student.NewStudent(student.NewStudentParams{Name: "John Smith", Email: "john@uni.ac.uk", EnrollmentYear: 2024})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO students (name, email, enrollment_year, created_at)")).
		WithArgs("John Smith", "john@uni.ac.uk", 2024, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := repo.Create(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(studentCols).AddRow(int64(1), s.Name, s.Email, s.EnrollmentYear, s.CreatedAt))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, s.Name, got.Name)
	assert.Equal(t, s.Email, got.Email)
	assert.Equal(t, s.EnrollmentYear, got.EnrollmentYear)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectQuery("INSERT INTO students").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &student.Student{Name: "A", Email: "a@b", EnrollmentYear: 1})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetByIDMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectQuery("FROM students WHERE id").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	s, err := repo.GetByID(context.Background(), 99)
	assert.Nil(t, s)
	assert.True(t, shared.IsNotFound(err))
}

func TestStudentRepository_Search(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(name) LIKE $1 OR LOWER(email) LIKE $1")).
		WithArgs("%smith%").
		WillReturnRows(pgxmock.NewRows(studentCols).
			AddRow(int64(2), "Jane Smith", "jane@uni.ac.uk", 2023, now).
			AddRow(int64(1), "John Smith", "john@uni.ac.uk", 2024, now))

	found, err := repo.Search(context.Background(), "Smith")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Jane Smith", found[0].Name)
	assert.Equal(t, "John Smith", found[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_SearchEscapesWildcards(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectQuery("FROM students").
		WithArgs(`%100\%\_x%`).
		WillReturnRows(pgxmock.NewRows(studentCols))

	found, err := repo.Search(context.Background(), "100%_X")
	require.NoError(t, err)
	assert.Empty(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_UpdateOnlySuppliedFields(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET name = $1 WHERE id = $2")).
		WithArgs("Jane Smith", int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	name := " Jane Smith "
	ok, err := repo.Update(context.Background(), 1, student.Patch{Name: &name})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_UpdateEmptyPatchTouchesNothing(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	ok, err := repo.Update(context.Background(), 1, student.Patch{})
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_DeleteCascadesInOneTransaction(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectBegin()
	for _, table := range dependentTables {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM "+table+" WHERE student_id = $1")).
			WithArgs(int64(5)).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	ok, err := repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_DeleteRollsBackOnFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE student_id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM wellbeing_surveys WHERE student_id = $1")).
		WithArgs(int64(5)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	ok, err := repo.Delete(context.Background(), 5)
	assert.Error(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_Count(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrations_Ordered(t *testing.T) {
	migs := GetMigrations()
	require.NotEmpty(t, migs)
	for i, m := range migs {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
}

func TestMigrator_AppliesOnlyPending(t *testing.T) {
	mock := newMock(t)
	m := NewMigrator(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}).AddRow(1, time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)")).
		WithArgs(2, "create_users_alerts_audit").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := m.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_FailureRollsBack(t *testing.T) {
	mock := newMock(t)
	m := NewMigrator(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}))

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS students").
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	n, err := m.Migrate(context.Background())
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.Equal(t, 0, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollbackRevertsLatest(t *testing.T) {
	mock := newMock(t)
	m := NewMigrator(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}).
			AddRow(1, time.Now()).
			AddRow(2, time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS audit_logs").
		WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schema_migrations WHERE version = $1")).
		WithArgs(2).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	version, err := m.Rollback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollbackNothingApplied(t *testing.T) {
	mock := newMock(t)
	m := NewMigrator(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}))

	version, err := m.Rollback(context.Background())
	require.NoError(t, err)
	assert.Zero(t, version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollbackFailureKeepsVersion(t *testing.T) {
	mock := newMock(t)
	m := NewMigrator(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}).AddRow(1, time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS coursework").
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	version, err := m.Rollback(context.Background())
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.Zero(t, version)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Package store is the persistence boundary of the hub. It validates input,
// calls the repositories, and turns storage failures into sentinel results
// (InvalidID, false, UpdateFailed, empty slices) after logging them with the
// operation and key. Validation errors are returned to the caller unchanged.
package store

import (
	"context"

	"github.com/campuscare/wellbeing-hub/internal/domain/alert"
	"github.com/campuscare/wellbeing-hub/internal/domain/attendance"
	"github.com/campuscare/wellbeing-hub/internal/domain/audit"
	"github.com/campuscare/wellbeing-hub/internal/domain/coursework"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/student"
	"github.com/campuscare/wellbeing-hub/internal/domain/user"
	"github.com/campuscare/wellbeing-hub/internal/domain/wellbeing"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// InvalidID is returned by Add operations that could not store the record.
const InvalidID int64 = -1

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE RESULT
// ══════════════════════════════════════════════════════════════════════════════

// UpdateResult is the outcome of a partial update.
type UpdateResult int

const (
	// UpdateApplied means a row was changed.
	UpdateApplied UpdateResult = iota
	// UpdateNoChanges means no field was supplied; nothing was touched.
	UpdateNoChanges
	// UpdateNotFound means no row has the given ID.
	UpdateNotFound
	// UpdateFailed means validation or storage failed.
	UpdateFailed
)

// Applied reports whether a row was actually affected.
func (r UpdateResult) Applied() bool {
	return r == UpdateApplied
}

func (r UpdateResult) String() string {
	switch r {
	case UpdateApplied:
		return "applied"
	case UpdateNoChanges:
		return "no changes made"
	case UpdateNotFound:
		return "not found"
	case UpdateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Invalidator is told when a student's records change so derived data can be
// dropped.
type Invalidator interface {
	InvalidateStudent(ctx context.Context, studentID int64)
}

// Repositories groups the storage backends the store writes through.
type Repositories struct {
	Students   student.Repository
	Attendance attendance.Repository
	Wellbeing  wellbeing.Repository
	Coursework coursework.Repository
	Users      user.Repository
	Alerts     alert.Repository
	Audit      audit.Repository
}

// Option configures a Store.
type Option func(*Store)

// WithInvalidator registers a hook called after every write that touches a
// student's records.
func WithInvalidator(inv Invalidator) Option {
	return func(s *Store) {
		s.invalidator = inv
	}
}

// Store is the single shared entry point to persisted state.
type Store struct {
	repos       Repositories
	log         *logger.Logger
	invalidator Invalidator
}

// New creates a Store over repos.
func New(repos Repositories, log *logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		repos: repos,
		log:   log.With(logger.Component("store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// failed logs a storage failure. Expected absences are logged at debug level.
func (s *Store) failed(op string, err error, fields ...logger.Field) {
	fields = append(fields, logger.Operation(op), logger.Err(err))
	if shared.IsNotFound(err) {
		s.log.Debug("record not found", fields...)
		return
	}
	s.log.Error("storage operation failed", fields...)
}

func (s *Store) invalidate(ctx context.Context, studentID int64) {
	if s.invalidator != nil && studentID > 0 {
		s.invalidator.InvalidateStudent(ctx, studentID)
	}
}

// orEmpty keeps the "empty collection, never nil" contract on failures.
func orEmpty[T any](items []T, err error) []T {
	if err != nil || items == nil {
		return []T{}
	}
	return items
}

// mutation maps a (studentID, ok, err) repository result to an UpdateResult.
func (s *Store) mutation(ctx context.Context, op string, id, studentID int64, ok bool, err error) UpdateResult {
	if err != nil {
		s.failed(op, err, logger.RecordID(id))
		return UpdateFailed
	}
	if !ok {
		s.log.Debug("record not found", logger.Operation(op), logger.RecordID(id))
		return UpdateNotFound
	}
	s.invalidate(ctx, studentID)
	return UpdateApplied
}

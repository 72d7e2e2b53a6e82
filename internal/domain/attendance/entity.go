// Package attendance models per-session attendance records.
package attendance

import (
	"strings"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
)

const domain = "attendance"

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the attendance outcome of one session.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusExcused Status = "Excused"
	StatusLate    Status = "Late"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusExcused, StatusLate:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a raw token into a Status. Only the exact tokens
// Present, Absent, Excused and Late are accepted.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", shared.InvalidToken(domain, "attendance status", raw)
	}
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record is one student's attendance at one session.
type Record struct {
	ID         int64
	StudentID  int64
	Week       int
	ModuleCode string
	Status     Status
	RecordedAt time.Time
}

// IsPresent reports whether the record counts towards the attendance rate.
func (r *Record) IsPresent() bool {
	return r.Status == StatusPresent
}

// NewRecordParams holds the fields for a new attendance record.
type NewRecordParams struct {
	StudentID  int64
	Week       int
	ModuleCode string
	Status     Status
}

// NewRecord validates params and builds a record.
func NewRecord(params NewRecordParams) (*Record, error) {
	if params.StudentID <= 0 {
		return nil, shared.NewDomainError(domain, "Validate", shared.ErrInvalidID, "student id must be positive")
	}
	if params.Week < 1 {
		return nil, shared.NewDomainError(domain, "Validate", shared.ErrValueOutOfRange, "week must be at least 1")
	}
	code := strings.TrimSpace(params.ModuleCode)
	if code == "" {
		return nil, shared.Empty(domain, "module code")
	}
	if !params.Status.IsValid() {
		return nil, shared.InvalidToken(domain, "attendance status", string(params.Status))
	}

	return &Record{
		StudentID:  params.StudentID,
		Week:       params.Week,
		ModuleCode: code,
		Status:     params.Status,
		RecordedAt: time.Now().UTC(),
	}, nil
}

// Entry is a record joined with the student's name, used for full dumps.
type Entry struct {
	Record
	StudentName string
}

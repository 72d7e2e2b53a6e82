// Package coursework models assignment submissions and grades.
package coursework

import (
	"strings"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
)

const domain = "coursework"

// Status describes how an assignment was handed in.
type Status string

const (
	StatusSubmitted Status = "Submitted"
	StatusLate      Status = "Late"
	StatusMissing   Status = "Missing"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusLate, StatusMissing:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a raw token into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", shared.InvalidToken(domain, "coursework status", raw)
	}
	return s, nil
}

// Grade bounds, inclusive.
const (
	MinGrade = 0.0
	MaxGrade = 100.0
)

// Entry is one assignment for one student. Grade is nil until marked.
type Entry struct {
	ID             int64
	StudentID      int64
	ModuleCode     string
	AssignmentName string
	SubmittedOn    time.Time
	Status         Status
	Grade          *float64
}

// HasGrade reports whether the entry has been marked.
func (e *Entry) HasGrade() bool {
	return e.Grade != nil
}

// NewEntryParams holds the fields for a new coursework entry.
type NewEntryParams struct {
	StudentID      int64
	ModuleCode     string
	AssignmentName string
	SubmittedOn    time.Time
	Status         Status
	Grade          *float64
}

// NewEntry validates params and builds an entry.
func NewEntry(params NewEntryParams) (*Entry, error) {
	if params.StudentID <= 0 {
		return nil, shared.NewDomainError(domain, "Validate", shared.ErrInvalidID, "student id must be positive")
	}
	code := strings.TrimSpace(params.ModuleCode)
	if code == "" {
		return nil, shared.Empty(domain, "module code")
	}
	name := strings.TrimSpace(params.AssignmentName)
	if name == "" {
		return nil, shared.Empty(domain, "assignment name")
	}
	if !params.Status.IsValid() {
		return nil, shared.InvalidToken(domain, "coursework status", string(params.Status))
	}
	if err := ValidateGrade(params.Grade); err != nil {
		return nil, err
	}

	submitted := params.SubmittedOn
	if submitted.IsZero() {
		submitted = time.Now().UTC()
	}

	return &Entry{
		StudentID:      params.StudentID,
		ModuleCode:     code,
		AssignmentName: name,
		SubmittedOn:    submitted.UTC().Truncate(24 * time.Hour),
		Status:         params.Status,
		Grade:          params.Grade,
	}, nil
}

// ValidateGrade accepts nil or a value in [0, 100].
func ValidateGrade(grade *float64) error {
	if grade == nil {
		return nil
	}
	g := *grade
	if g != g || g < MinGrade || g > MaxGrade {
		return shared.OutOfRange(domain, "grade", g, MinGrade, MaxGrade)
	}
	return nil
}

// Patch lists coursework fields to change. Nil fields are left as they are,
// so a grade once recorded can be replaced but not cleared back to ungraded.
type Patch struct {
	Status *Status
	Grade  *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.Grade == nil
}

// Validate checks every supplied field.
func (p Patch) Validate() error {
	if p.Status != nil && !p.Status.IsValid() {
		return shared.InvalidToken(domain, "coursework status", string(*p.Status))
	}
	return ValidateGrade(p.Grade)
}

// Package alert models concerns raised about a student.
package alert

import (
	"strings"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
)

const domain = "alert"

// Type classifies what triggered an alert.
type Type string

const (
	TypeAcademic   Type = "Academic"   // low or missing grades
	TypeAttendance Type = "Attendance" // consecutive absences
	TypeWellbeing  Type = "Wellbeing"  // high stress
	TypeOther      Type = "Other"
)

// IsValid reports whether t is one of the known types.
func (t Type) IsValid() bool {
	switch t {
	case TypeAcademic, TypeAttendance, TypeWellbeing, TypeOther:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// ParseType converts a raw token into a Type.
func ParseType(raw string) (Type, error) {
	t := Type(raw)
	if !t.IsValid() {
		return "", shared.InvalidToken(domain, "alert type", raw)
	}
	return t, nil
}

// Alert flags a student for follow-up. It can be resolved once and is never
// reopened.
type Alert struct {
	ID        int64
	StudentID int64
	Type      Type
	Reason    string
	CreatedAt time.Time
	Resolved  bool
}

// NewAlert validates and builds an open alert.
func NewAlert(studentID int64, t Type, reason string) (*Alert, error) {
	if studentID <= 0 {
		return nil, shared.NewDomainError(domain, "Validate", shared.ErrInvalidID, "student id must be positive")
	}
	if !t.IsValid() {
		return nil, shared.InvalidToken(domain, "alert type", string(t))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.Empty(domain, "reason")
	}

	return &Alert{
		StudentID: studentID,
		Type:      t,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Resolve marks the alert resolved. Resolving twice is an error.
func (a *Alert) Resolve() error {
	if a.Resolved {
		return shared.ErrAlertAlreadyResolved
	}
	a.Resolved = true
	return nil
}

// Key identifies duplicate open alerts.
func (a *Alert) Key() string {
	return string(a.Type) + "|" + a.Reason
}

// Package student contains the student domain model.
// This is the core of the business logic - no external dependencies here.
package student

import (
	"strings"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
)

const domain = "student"

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is an enrolled student whose attendance, wellbeing and coursework
// are tracked.
type Student struct {
	// ID is assigned by the store on insert.
	ID int64

	Name  string
	Email string

	// EnrollmentYear is the year the student started the programme (>= 1).
	EnrollmentYear int

	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams holds the fields needed to register a student.
type NewStudentParams struct {
	Name           string
	Email          string
	EnrollmentYear int
}

// NewStudent validates params and returns a student ready to be stored.
func NewStudent(params NewStudentParams) (*Student, error) {
	name := strings.TrimSpace(params.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(params.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if err := validateYear(params.EnrollmentYear); err != nil {
		return nil, err
	}

	return &Student{
		Name:           name,
		Email:          email,
		EnrollmentYear: params.EnrollmentYear,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func validateName(name string) error {
	if name == "" {
		return shared.Empty(domain, "name")
	}
	if len(name) > 200 {
		return shared.Invalid(domain, "name must be at most 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.Empty(domain, "email")
	}
	if !strings.Contains(email, "@") {
		return shared.NewDomainError(domain, "Validate", shared.ErrInvalidFormat,
			"email must contain '@', got "+email)
	}
	return nil
}

func validateYear(year int) error {
	if year < 1 {
		return shared.NewDomainError(domain, "Validate", shared.ErrValueOutOfRange,
			"enrollment year must be positive")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PARTIAL UPDATE
// ══════════════════════════════════════════════════════════════════════════════

// Patch lists the fields to change on a student. Nil fields are left as they are.
type Patch struct {
	Name           *string
	Email          *string
	EnrollmentYear *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.EnrollmentYear == nil
}

// Validate checks every supplied field with the same rules as NewStudent.
func (p Patch) Validate() error {
	if p.Name != nil {
		if err := validateName(strings.TrimSpace(*p.Name)); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if err := validateEmail(strings.TrimSpace(*p.Email)); err != nil {
			return err
		}
	}
	if p.EnrollmentYear != nil {
		if err := validateYear(*p.EnrollmentYear); err != nil {
			return err
		}
	}
	return nil
}

// Normalized returns a copy of p with surrounding whitespace trimmed.
func (p Patch) Normalized() Patch {
	out := p
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		out.Name = &name
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		out.Email = &email
	}
	return out
}

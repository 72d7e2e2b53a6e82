// Package wellbeing models self-reported weekly wellbeing surveys.
package wellbeing

import (
	"fmt"
	"strings"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
)

const domain = "wellbeing"

// Survey bounds, inclusive.
const (
	MinStress = 1
	MaxStress = 5

	MinSleep = 0.0
	MaxSleep = 24.0
)

// DefaultSource tags records entered through the weekly survey.
const DefaultSource = "survey"

// Record is one weekly survey response.
type Record struct {
	ID          int64
	StudentID   int64
	Week        int
	StressLevel int
	SleepHours  float64
	Notes       string
	Source      string
	SurveyedAt  time.Time
}

// IsHighStress reports whether the stress level reaches threshold.
func (r *Record) IsHighStress(threshold int) bool {
	return r.StressLevel >= threshold
}

// NewRecordParams holds the fields for a new survey record.
type NewRecordParams struct {
	StudentID   int64
	Week        int
	StressLevel int
	SleepHours  float64
	Notes       string
	Source      string
}

// NewRecord validates params and builds a record. An empty Source becomes
// DefaultSource.
func NewRecord(params NewRecordParams) (*Record, error) {
	if params.StudentID <= 0 {
		return nil, shared.NewDomainError(domain, "Validate", shared.ErrInvalidID, "student id must be positive")
	}
	if params.Week < 1 {
		return nil, shared.NewDomainError(domain, "Validate", shared.ErrValueOutOfRange, "week must be at least 1")
	}
	if err := ValidateStress(params.StressLevel); err != nil {
		return nil, err
	}
	if err := ValidateSleep(params.SleepHours); err != nil {
		return nil, err
	}

	source := strings.TrimSpace(params.Source)
	if source == "" {
		source = DefaultSource
	}

	return &Record{
		StudentID:   params.StudentID,
		Week:        params.Week,
		StressLevel: params.StressLevel,
		SleepHours:  params.SleepHours,
		Notes:       strings.TrimSpace(params.Notes),
		Source:      source,
		SurveyedAt:  time.Now().UTC(),
	}, nil
}

// ValidateStress checks the 1-5 stress scale.
func ValidateStress(level int) error {
	if level < MinStress || level > MaxStress {
		return shared.OutOfRange(domain, "stress level", level, MinStress, MaxStress)
	}
	return nil
}

// ValidateSleep checks sleep hours are within a day.
func ValidateSleep(hours float64) error {
	// NaN fails both comparisons, so check it explicitly.
	if hours != hours || hours < MinSleep || hours > MaxSleep {
		return shared.OutOfRange(domain, "sleep hours", fmt.Sprintf("%g", hours), MinSleep, MaxSleep)
	}
	return nil
}

// Patch lists survey fields to change. Nil fields are left as they are.
type Patch struct {
	StressLevel *int
	SleepHours  *float64
	Notes       *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.StressLevel == nil && p.SleepHours == nil && p.Notes == nil
}

// Validate checks every supplied field.
func (p Patch) Validate() error {
	if p.StressLevel != nil {
		if err := ValidateStress(*p.StressLevel); err != nil {
			return err
		}
	}
	if p.SleepHours != nil {
		if err := ValidateSleep(*p.SleepHours); err != nil {
			return err
		}
	}
	return nil
}

// TrendPoint is one week of a student's stress trend.
type TrendPoint struct {
	Week        int     `json:"week"`
	StressLevel int     `json:"stress_level"`
	SleepHours  float64 `json:"sleep_hours"`
}

// Point returns the trend view of r.
func (r *Record) Point() TrendPoint {
	return TrendPoint{Week: r.Week, StressLevel: r.StressLevel, SleepHours: r.SleepHours}
}

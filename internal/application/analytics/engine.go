// Package analytics derives per-student and system-wide figures from stored
// records. Every operation is a pure read.
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/attendance"
	"github.com/campuscare/wellbeing-hub/internal/domain/coursework"
	"github.com/campuscare/wellbeing-hub/internal/domain/wellbeing"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// DefaultHighStressThreshold is the stress level from which a week counts as
// high stress.
const DefaultHighStressThreshold = 4

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Reader is the read side of the store the engine works from. The per-student
// reads return false when storage failed; the list is then empty.
type Reader interface {
	StudentAttendance(ctx context.Context, studentID int64) ([]*attendance.Record, bool)
	StudentSurveys(ctx context.Context, studentID int64) ([]*wellbeing.Record, bool)
	StudentCoursework(ctx context.Context, studentID int64) ([]*coursework.Entry, bool)
	AllSurveys(ctx context.Context) []*wellbeing.Record
	CountStudents(ctx context.Context) (int, bool)
	CountAttendance(ctx context.Context) (int, bool)
}

// SummaryCache stores computed summaries between reads. Implementations must
// treat their own failures as misses.
type SummaryCache interface {
	GetSummary(ctx context.Context, studentID int64) (PerformanceSummary, bool)
	PutSummary(ctx context.Context, studentID int64, s PerformanceSummary)
	InvalidateStudent(ctx context.Context, studentID int64)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULTS
// ══════════════════════════════════════════════════════════════════════════════

// PerformanceSummary aggregates attendance, surveys and coursework. A
// summary built while any read failed is returned but never cached.
func (e *Engine) PerformanceSummary(ctx context.Context, studentID int64) PerformanceSummary {
	if e.cache != nil {
		if s, ok := e.cache.GetSummary(ctx, studentID); ok {
			return s
		}
	}

	records, attendanceOK := e.reader.StudentAttendance(ctx, studentID)
	surveys, surveysOK := e.reader.StudentSurveys(ctx, studentID)
	entries, courseworkOK := e.reader.StudentCoursework(ctx, studentID)

	s := PerformanceSummary{
		StudentID:      studentID,
		AttendanceRate: attendanceRate(records),
	}

	if len(surveys) > 0 {
		var stress, sleep float64
		for _, r := range surveys {
			stress += float64(r.StressLevel)
			sleep += r.SleepHours
		}
		s.AverageStress = stress / float64(len(surveys))
		s.AverageSleep = sleep / float64(len(surveys))
	}

	var total float64
	for _, c := range entries {
		if !c.HasGrade() {
			continue
		}
		total += *c.Grade
		s.AssignmentsCompleted++
	}
	if s.AssignmentsCompleted > 0 {
		s.AverageGrade = total / float64(s.AssignmentsCompleted)
	}

	if e.cache == nil {
		return s
	}
	if !attendanceOK || !surveysOK || !courseworkOK {
		e.log.Warn("partial summary not cached", logger.StudentID(studentID))
		return s
	}
	e.cache.PutSummary(ctx, studentID, s)
	return s
}

// Report combines the summary with the weeks at or above the default
// threshold.
func (e *Engine) Report(ctx context.Context, studentID int64) Report {
	weeks := e.HighStressWeeks(ctx, studentID, e.threshold)
	return Report{
		Summary:             e.PerformanceSummary(ctx, studentID),
		HighStressThreshold: e.threshold,
		HighStressWeeks:     weeks,
	}
}

// AttendanceTrend returns the attendance rate of every week the student has
// records for, in ascending week order.
func (e *Engine) AttendanceTrend(ctx context.Context, studentID int64) []WeekAttendance {
	records, _ := e.reader.StudentAttendance(ctx, studentID)
	byWeek := make(map[int]*WeekAttendance)
	for _, r := range records {
		w, ok := byWeek[r.Week]
		if !ok {
			w = &WeekAttendance{Week: r.Week}
			byWeek[r.Week] = w
		}
		w.Sessions++
		if r.IsPresent() {
			w.Present++
		}
	}

	out := make([]WeekAttendance, 0, len(byWeek))
	for _, w := range byWeek {
		w.Rate = float64(w.Present) / float64(w.Sessions) * 100
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// Overview reports system-wide totals. Averages are rounded to two decimals.
func (e *Engine) Overview(ctx context.Context) Overview {
	o := Overview{GeneratedAt: e.now().UTC()}

	if n, ok := e.reader.CountStudents(ctx); ok {
		o.TotalStudents = n
	}
	if n, ok := e.reader.CountAttendance(ctx); ok {
		o.AttendanceRecords = n
	}

	surveys := e.reader.AllSurveys(ctx)
	o.SurveyResponses = len(surveys)
	if len(surveys) > 0 {
		var stress, sleep float64
		for _, r := range surveys {
			stress += float64(r.StressLevel)
			sleep += r.SleepHours
			if r.IsHighStress(e.threshold) {
				o.HighStressCount++
			}
		}
		o.AverageStress = round2(stress / float64(len(surveys)))
		o.AverageSleep = round2(sleep / float64(len(surveys)))
	}

	e.log.Debug("overview generated",
		logger.Int("students", o.TotalStudents),
		logger.Int("surveys", o.SurveyResponses),
	)
	return o
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func attendanceRate(records []*attendance.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, r := range records {
		if r.IsPresent() {
			present++
		}
	}
	return float64(present) / float64(len(records)) * 100
}

func stressTrend(surveys []*wellbeing.Record) []wellbeing.TrendPoint {
	out := make([]wellbeing.TrendPoint, 0, len(surveys))
	for _, r := range surveys {
		out = append(out, r.Point())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

func filterHighStress(trend []wellbeing.TrendPoint, threshold int) []wellbeing.TrendPoint {
	out := make([]wellbeing.TrendPoint, 0, len(trend))
	for _, p := range trend {
		if p.StressLevel >= threshold {
			out = append(out, p)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package command contains write operations gated by the access policy.
package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/campuscare/wellbeing-hub/internal/application/access"
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

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATE ALERTS COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// EvaluateAlertsCommand scans records and raises alerts. StudentID 0 scans
// every student.
type EvaluateAlertsCommand struct {
	StudentID int64
}

// Validate checks the command.
func (c EvaluateAlertsCommand) Validate() error {
	if c.StudentID < 0 {
		return shared.NewDomainError("command", "EvaluateAlerts", shared.ErrInvalidID, "student id must not be negative")
	}
	return nil
}

// EvaluateAlertsResult reports what the scan did.
type EvaluateAlertsResult struct {
	StudentsChecked int            `json:"students_checked"`
	Raised          []*alert.Alert `json:"raised"`
	Duplicates      int            `json:"duplicates"`
}

// AlertStore is the part of the store the command reads and writes.
type AlertStore interface {
	GetStudent(ctx context.Context, id int64) (*student.Student, bool)
	AllStudents(ctx context.Context) []*student.Student
	AttendanceByStudent(ctx context.Context, studentID int64) []*attendance.Record
	SurveysByStudent(ctx context.Context, studentID int64) []*wellbeing.Record
	CourseworkByStudent(ctx context.Context, studentID int64) []*coursework.Entry
	AlertsByStudent(ctx context.Context, studentID int64) []*alert.Alert
	RaiseAlert(ctx context.Context, studentID int64, t alert.Type, reason string) (int64, error)
	RecordAudit(ctx context.Context, userID int64, action audit.ActionType, entityType string, entityID int64, details string) (int64, error)
}

// Authorizer answers who is logged in.
type Authorizer interface {
	Current() (access.Session, bool)
	HasPermission(required user.Role) bool
}

// EvaluateAlertsConfig holds the alert thresholds and switches off
// individual rules.
type EvaluateAlertsConfig struct {
	HighStressThreshold int
	PassMark            float64
	AbsenceRun          int

	SkipWellbeing  bool
	SkipAttendance bool
	SkipAcademic   bool
}

// DefaultEvaluateAlertsConfig returns the standard thresholds.
func DefaultEvaluateAlertsConfig() EvaluateAlertsConfig {
	return EvaluateAlertsConfig{
		HighStressThreshold: 4,
		PassMark:            40,
		AbsenceRun:          3,
	}
}

// EvaluateAlertsHandler handles EvaluateAlertsCommand. Only wellbeing
// officers and admins may run it.
type EvaluateAlertsHandler struct {
	store  AlertStore
	auth   Authorizer
	config EvaluateAlertsConfig
	log    *logger.Logger
}

// NewEvaluateAlertsHandler creates a handler. Zero config fields take the
// defaults.
func NewEvaluateAlertsHandler(store AlertStore, auth Authorizer, config EvaluateAlertsConfig, log *logger.Logger) *EvaluateAlertsHandler {
	def := DefaultEvaluateAlertsConfig()
	if config.HighStressThreshold <= 0 {
		config.HighStressThreshold = def.HighStressThreshold
	}
	if config.PassMark <= 0 {
		config.PassMark = def.PassMark
	}
	if config.AbsenceRun <= 0 {
		config.AbsenceRun = def.AbsenceRun
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EvaluateAlertsHandler{
		store:  store,
		auth:   auth,
		config: config,
		log:    log.With(logger.Component("command.evaluate_alerts")),
	}
}

// Handle runs the scan. An open alert with the same type and reason is
// never raised twice.
func (h *EvaluateAlertsHandler) Handle(ctx context.Context, cmd EvaluateAlertsCommand) (*EvaluateAlertsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	session, ok := h.auth.Current()
	if !ok {
		return nil, shared.ErrNoActiveSession
	}
	if !h.auth.HasPermission(user.RoleWellbeingOfficer) {
		return nil, shared.NewDomainError("access", "Authorize", shared.ErrForbidden,
			"role "+string(session.Role)+" may not evaluate alerts")
	}

	var students []*student.Student
	if cmd.StudentID > 0 {
		st, ok := h.store.GetStudent(ctx, cmd.StudentID)
		if !ok {
			return nil, shared.ErrStudentNotFound
		}
		students = []*student.Student{st}
	} else {
		students = h.store.AllStudents(ctx)
	}

	result := &EvaluateAlertsResult{Raised: []*alert.Alert{}}
	for _, st := range students {
		h.evaluateStudent(ctx, st.ID, result)
		result.StudentsChecked++
	}

	if len(result.Raised) > 0 {
		details := fmt.Sprintf("raised %d alerts", len(result.Raised))
		if _, err := h.store.RecordAudit(ctx, session.UserID, audit.ActionCreate, "alert", cmd.StudentID, details); err != nil {
			h.log.Warn("audit entry rejected", logger.UserID(session.UserID), logger.Err(err))
		}
	}

	h.log.Info("alerts evaluated",
		logger.Int("students", result.StudentsChecked),
		logger.Int("raised", len(result.Raised)),
		logger.Int("duplicates", result.Duplicates),
	)
	return result, nil
}

func (h *EvaluateAlertsHandler) evaluateStudent(ctx context.Context, studentID int64, result *EvaluateAlertsResult) {
	open := make(map[string]bool)
	for _, a := range h.store.AlertsByStudent(ctx, studentID) {
		if !a.Resolved {
			open[a.Key()] = true
		}
	}

	var candidates []*alert.Alert
	if !h.config.SkipWellbeing {
		candidates = append(candidates, h.wellbeingAlerts(studentID, h.store.SurveysByStudent(ctx, studentID))...)
	}
	if !h.config.SkipAttendance {
		candidates = append(candidates, h.attendanceAlerts(studentID, h.store.AttendanceByStudent(ctx, studentID))...)
	}
	if !h.config.SkipAcademic {
		candidates = append(candidates, h.academicAlerts(studentID, h.store.CourseworkByStudent(ctx, studentID))...)
	}

	for _, c := range candidates {
		if open[c.Key()] {
			result.Duplicates++
			continue
		}
		id, err := h.store.RaiseAlert(ctx, c.StudentID, c.Type, c.Reason)
		if err != nil || id <= 0 {
			h.log.Warn("alert not raised", logger.StudentID(studentID), logger.String("reason", c.Reason), logger.Err(err))
			continue
		}
		c.ID = id
		open[c.Key()] = true
		result.Raised = append(result.Raised, c)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Rules
// ─────────────────────────────────────────────────────────────────────────────

func (h *EvaluateAlertsHandler) wellbeingAlerts(studentID int64, surveys []*wellbeing.Record) []*alert.Alert {
	var out []*alert.Alert
	for _, r := range surveys {
		if !r.IsHighStress(h.config.HighStressThreshold) {
			continue
		}
		out = appendAlert(out, studentID, alert.TypeWellbeing,
			fmt.Sprintf("stress level %d in week %d", r.StressLevel, r.Week))
	}
	return out
}

// attendanceAlerts raises one alert per run of consecutive absences. The
// reason names the first week of the run so a growing run keeps its key.
func (h *EvaluateAlertsHandler) attendanceAlerts(studentID int64, records []*attendance.Record) []*alert.Alert {
	sorted := make([]*attendance.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Week != sorted[j].Week {
			return sorted[i].Week < sorted[j].Week
		}
		return sorted[i].ID < sorted[j].ID
	})

	var out []*alert.Alert
	run, startWeek := 0, 0
	flush := func() {
		if run >= h.config.AbsenceRun {
			out = appendAlert(out, studentID, alert.TypeAttendance,
				fmt.Sprintf("consecutive absences starting week %d", startWeek))
		}
		run = 0
	}
	for _, r := range sorted {
		if r.Status != attendance.StatusAbsent {
			flush()
			continue
		}
		if run == 0 {
			startWeek = r.Week
		}
		run++
	}
	flush()
	return out
}

func (h *EvaluateAlertsHandler) academicAlerts(studentID int64, entries []*coursework.Entry) []*alert.Alert {
	var out []*alert.Alert
	for _, e := range entries {
		switch {
		case e.Status == coursework.StatusMissing:
			out = appendAlert(out, studentID, alert.TypeAcademic,
				fmt.Sprintf("missing %s %s", e.ModuleCode, e.AssignmentName))
		case e.HasGrade() && *e.Grade < h.config.PassMark:
			out = appendAlert(out, studentID, alert.TypeAcademic,
				fmt.Sprintf("grade %.1f below pass mark in %s %s", *e.Grade, e.ModuleCode, e.AssignmentName))
		}
	}
	return out
}

func appendAlert(out []*alert.Alert, studentID int64, t alert.Type, reason string) []*alert.Alert {
	a, err := alert.NewAlert(studentID, t, reason)
	if err != nil {
		return out
	}
	return append(out, a)
}

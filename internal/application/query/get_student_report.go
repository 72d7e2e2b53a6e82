// Package query contains read operations gated by the access policy.
package query

import (
	"context"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/application/access"
	"github.com/campuscare/wellbeing-hub/internal/application/analytics"
	"github.com/campuscare/wellbeing-hub/internal/domain/audit"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/student"
	"github.com/campuscare/wellbeing-hub/internal/domain/user"
	"github.com/campuscare/wellbeing-hub/internal/domain/wellbeing"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Authorizer answers who is logged in and what they may see.
type Authorizer interface {
	Current() (access.Session, bool)
	HasPermission(required user.Role) bool
	CanViewPersonalWellbeing() bool
}

// Auditor appends audit entries.
type Auditor interface {
	RecordAudit(ctx context.Context, userID int64, action audit.ActionType, entityType string, entityID int64, details string) (int64, error)
}

// StudentFinder looks up a student.
type StudentFinder interface {
	GetStudent(ctx context.Context, id int64) (*student.Student, bool)
}

// ReportSource builds per-student analytics.
type ReportSource interface {
	Report(ctx context.Context, studentID int64) analytics.Report
	AttendanceTrend(ctx context.Context, studentID int64) []analytics.WeekAttendance
}

// authorize checks the session and role, returning the session on success.
func authorize(auth Authorizer, required user.Role) (access.Session, error) {
	s, ok := auth.Current()
	if !ok {
		return access.Session{}, shared.ErrNoActiveSession
	}
	if !auth.HasPermission(required) {
		return access.Session{}, shared.NewDomainError("access", "Authorize", shared.ErrForbidden,
			"role "+string(s.Role)+" may not perform this action")
	}
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT REPORT QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentReportQuery asks for one student's report.
type GetStudentReportQuery struct {
	StudentID int64
}

// Validate checks the query.
func (q GetStudentReportQuery) Validate() error {
	if q.StudentID <= 0 {
		return shared.NewDomainError("query", "GetStudentReport", shared.ErrInvalidID, "student id must be positive")
	}
	return nil
}

// StudentReportDTO is the report as shown to staff. Wellbeing fields are
// zeroed and WellbeingHidden set when the viewer may not see them.
type StudentReportDTO struct {
	StudentID       int64                        `json:"student_id"`
	Name            string                       `json:"name"`
	Email           string                       `json:"email"`
	EnrollmentYear  int                          `json:"enrollment_year"`
	Summary         analytics.PerformanceSummary `json:"summary"`
	AttendanceTrend []analytics.WeekAttendance   `json:"attendance_trend"`
	HighStressWeeks []wellbeing.TrendPoint       `json:"high_stress_weeks,omitempty"`
	WellbeingHidden bool                         `json:"wellbeing_hidden"`
	GeneratedAt     time.Time                    `json:"generated_at"`
}

// GetStudentReportHandler serves GetStudentReportQuery to course directors
// and above.
type GetStudentReportHandler struct {
	auth     Authorizer
	students StudentFinder
	reports  ReportSource
	auditor  Auditor
	log      *logger.Logger
}

// NewGetStudentReportHandler creates a handler.
func NewGetStudentReportHandler(
	auth Authorizer,
	students StudentFinder,
	reports ReportSource,
	auditor Auditor,
	log *logger.Logger,
) *GetStudentReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetStudentReportHandler{
		auth:     auth,
		students: students,
		reports:  reports,
		auditor:  auditor,
		log:      log.With(logger.Component("query.student_report")),
	}
}

// Handle builds the report and records who viewed it.
func (h *GetStudentReportHandler) Handle(ctx context.Context, q GetStudentReportQuery) (*StudentReportDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	session, err := authorize(h.auth, user.RoleCourseDirector)
	if err != nil {
		return nil, err
	}

	st, ok := h.students.GetStudent(ctx, q.StudentID)
	if !ok {
		return nil, shared.ErrStudentNotFound
	}

	report := h.reports.Report(ctx, q.StudentID)
	dto := &StudentReportDTO{
		StudentID:       st.ID,
		Name:            st.Name,
		Email:           st.Email,
		EnrollmentYear:  st.EnrollmentYear,
		Summary:         report.Summary,
		AttendanceTrend: h.reports.AttendanceTrend(ctx, q.StudentID),
		HighStressWeeks: report.HighStressWeeks,
		GeneratedAt:     time.Now().UTC(),
	}

	if !h.auth.CanViewPersonalWellbeing() {
		dto.Summary.AverageStress = 0
		dto.Summary.AverageSleep = 0
		dto.HighStressWeeks = nil
		dto.WellbeingHidden = true
	}

	details := "student report"
	if !dto.WellbeingHidden {
		details = "student report with wellbeing"
	}
	if _, err := h.auditor.RecordAudit(ctx, session.UserID, audit.ActionView, "student", q.StudentID, details); err != nil {
		h.log.Warn("audit entry rejected", logger.UserID(session.UserID), logger.Err(err))
	}

	h.log.Info("student report served",
		logger.UserID(session.UserID),
		logger.StudentID(q.StudentID),
		logger.Bool("wellbeing_hidden", dto.WellbeingHidden),
	)
	return dto, nil
}

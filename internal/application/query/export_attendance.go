package query

import (
	"context"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/attendance"
	"github.com/campuscare/wellbeing-hub/internal/domain/audit"
	"github.com/campuscare/wellbeing-hub/internal/domain/user"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT ATTENDANCE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceDumper reads every attendance record joined with student names.
type AttendanceDumper interface {
	AllAttendance(ctx context.Context) []*attendance.Entry
}

// AttendanceRowDTO is one line of the attendance export.
type AttendanceRowDTO struct {
	RecordID    int64     `json:"record_id"`
	StudentID   int64     `json:"student_id"`
	StudentName string    `json:"student_name"`
	Week        int       `json:"week"`
	ModuleCode  string    `json:"module_code"`
	Status      string    `json:"status"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ExportAttendanceHandler returns the full attendance dump to course
// directors and above.
type ExportAttendanceHandler struct {
	auth    Authorizer
	dumper  AttendanceDumper
	auditor Auditor
	log     *logger.Logger
}

// NewExportAttendanceHandler creates a handler.
func NewExportAttendanceHandler(auth Authorizer, dumper AttendanceDumper, auditor Auditor, log *logger.Logger) *ExportAttendanceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ExportAttendanceHandler{
		auth:    auth,
		dumper:  dumper,
		auditor: auditor,
		log:     log.With(logger.Component("query.export_attendance")),
	}
}

// Handle returns the rows in store order (week, then student name).
func (h *ExportAttendanceHandler) Handle(ctx context.Context) ([]AttendanceRowDTO, error) {
	session, err := authorize(h.auth, user.RoleCourseDirector)
	if err != nil {
		return nil, err
	}

	entries := h.dumper.AllAttendance(ctx)
	rows := make([]AttendanceRowDTO, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, AttendanceRowDTO{
			RecordID:    e.ID,
			StudentID:   e.StudentID,
			StudentName: e.StudentName,
			Week:        e.Week,
			ModuleCode:  e.ModuleCode,
			Status:      e.Status.String(),
			RecordedAt:  e.RecordedAt,
		})
	}

	if _, err := h.auditor.RecordAudit(ctx, session.UserID, audit.ActionExport, "attendance", 0, "attendance dump"); err != nil {
		h.log.Warn("audit entry rejected", logger.UserID(session.UserID), logger.Err(err))
	}
	h.log.Info("attendance exported", logger.UserID(session.UserID), logger.Int("rows", len(rows)))
	return rows, nil
}

package query

import (
	"context"
	"testing"

	"github.com/campuscare/wellbeing-hub/internal/application/access"
	"github.com/campuscare/wellbeing-hub/internal/application/analytics"
	"github.com/campuscare/wellbeing-hub/internal/domain/attendance"
	"github.com/campuscare/wellbeing-hub/internal/domain/audit"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/student"
	"github.com/campuscare/wellbeing-hub/internal/domain/user"
	"github.com/campuscare/wellbeing-hub/internal/domain/wellbeing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	session *access.Session
}

func as(role user.Role) *fakeAuth {
	return &fakeAuth{session: &access.Session{UserID: 10, Username: "u", Role: role}}
}

func (f *fakeAuth) Current() (access.Session, bool) {
	if f.session == nil {
		return access.Session{}, false
	}
	return *f.session, true
}

func (f *fakeAuth) HasPermission(required user.Role) bool {
	return f.session != nil && f.session.Role.Satisfies(required)
}

func (f *fakeAuth) CanViewPersonalWellbeing() bool {
	return f.session != nil && f.session.Role.CanViewPersonalWellbeing()
}

type fakeAuditor struct {
	entries []audit.ActionType
	details []string
}

func (f *fakeAuditor) RecordAudit(_ context.Context, _ int64, action audit.ActionType, _ string, _ int64, details string) (int64, error) {
	f.entries = append(f.entries, action)
	f.details = append(f.details, details)
	return int64(len(f.entries)), nil
}

type fakeStudents map[int64]*student.Student

func (f fakeStudents) GetStudent(_ context.Context, id int64) (*student.Student, bool) {
	s, ok := f[id]
	return s, ok
}

type fakeReports struct{}

func (fakeReports) Report(_ context.Context, id int64) analytics.Report {
	return analytics.Report{
		Summary: analytics.PerformanceSummary{
			StudentID: id, AttendanceRate: 75, AverageStress: 4.5, AverageSleep: 6, AverageGrade: 58, AssignmentsCompleted: 2,
		},
		HighStressThreshold: 4,
		HighStressWeeks:     []wellbeing.TrendPoint{{Week: 3, StressLevel: 5, SleepHours: 5}},
	}
}

func (fakeReports) AttendanceTrend(_ context.Context, _ int64) []analytics.WeekAttendance {
	return []analytics.WeekAttendance{{Week: 1, Sessions: 4, Present: 3, Rate: 75}}
}

func newReportHandler(auth *fakeAuth, auditor *fakeAuditor) *GetStudentReportHandler {
	students := fakeStudents{1: {ID: 1, Name: "Alice Smith", Email: "alice@uni.ac.uk", EnrollmentYear: 2023}}
	return NewGetStudentReportHandler(auth, students, fakeReports{}, auditor, nil)
}

func TestGetStudentReport_OfficerSeesWellbeing(t *testing.T) {
	auditor := &fakeAuditor{}
	h := newReportHandler(as(user.RoleWellbeingOfficer), auditor)

	dto, err := h.Handle(context.Background(), GetStudentReportQuery{StudentID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", dto.Name)
	assert.False(t, dto.WellbeingHidden)
	assert.Equal(t, 4.5, dto.Summary.AverageStress)
	assert.Len(t, dto.HighStressWeeks, 1)
	assert.Len(t, dto.AttendanceTrend, 1)

	require.Equal(t, []audit.ActionType{audit.ActionView}, auditor.entries)
	assert.Equal(t, "student report with wellbeing", auditor.details[0])
}

func TestGetStudentReport_DirectorWellbeingHidden(t *testing.T) {
	auditor := &fakeAuditor{}
	h := newReportHandler(as(user.RoleCourseDirector), auditor)

	dto, err := h.Handle(context.Background(), GetStudentReportQuery{StudentID: 1})
	require.NoError(t, err)
	assert.True(t, dto.WellbeingHidden)
	assert.Zero(t, dto.Summary.AverageStress)
	assert.Zero(t, dto.Summary.AverageSleep)
	assert.Nil(t, dto.HighStressWeeks)
	assert.Equal(t, 75.0, dto.Summary.AttendanceRate)
	assert.Equal(t, 58.0, dto.Summary.AverageGrade)
	assert.Equal(t, "student report", auditor.details[0])
}

func TestGetStudentReport_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		h := newReportHandler(&fakeAuth{}, &fakeAuditor{})
		_, err := h.Handle(ctx, GetStudentReportQuery{StudentID: 1})
		assert.ErrorIs(t, err, shared.ErrNoActiveSession)
	})

	t.Run("student role", func(t *testing.T) {
		auditor := &fakeAuditor{}
		h := newReportHandler(as(user.RoleStudent), auditor)
		_, err := h.Handle(ctx, GetStudentReportQuery{StudentID: 1})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Empty(t, auditor.entries)
	})

	t.Run("unknown student", func(t *testing.T) {
		h := newReportHandler(as(user.RoleAdmin), &fakeAuditor{})
		_, err := h.Handle(ctx, GetStudentReportQuery{StudentID: 2})
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("invalid id", func(t *testing.T) {
		h := newReportHandler(as(user.RoleAdmin), &fakeAuditor{})
		_, err := h.Handle(ctx, GetStudentReportQuery{StudentID: 0})
		assert.True(t, shared.IsValidation(err))
	})
}

type fakeDumper []*attendance.Entry

func (f fakeDumper) AllAttendance(_ context.Context) []*attendance.Entry { return f }

func TestExportAttendance(t *testing.T) {
	dump := fakeDumper{
		{Record: attendance.Record{ID: 1, StudentID: 1, Week: 1, ModuleCode: "CS101", Status: attendance.StatusPresent}, StudentName: "Alice"},
		{Record: attendance.Record{ID: 2, StudentID: 2, Week: 1, ModuleCode: "CS101", Status: attendance.StatusAbsent}, StudentName: "Bob"},
	}

	auditor := &fakeAuditor{}
	rows, err := NewExportAttendanceHandler(as(user.RoleCourseDirector), dump, auditor, nil).Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].StudentName)
	assert.Equal(t, "Absent", rows[1].Status)
	assert.Equal(t, []audit.ActionType{audit.ActionExport}, auditor.entries)

	_, err = NewExportAttendanceHandler(as(user.RoleStudent), dump, &fakeAuditor{}, nil).Handle(context.Background())
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

package store

import (
	"context"

	"github.com/campuscare/wellbeing-hub/internal/domain/attendance"
	"github.com/campuscare/wellbeing-hub/internal/domain/coursework"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/wellbeing"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// ─────────────────────────────────────────────────────────────────────────────
// Attendance
// ─────────────────────────────────────────────────────────────────────────────

// RecordAttendance stores one attendance mark.
func (s *Store) RecordAttendance(ctx context.Context, params attendance.NewRecordParams) (int64, error) {
	r, err := attendance.NewRecord(params)
	if err != nil {
		return InvalidID, err
	}

	id, err := s.repos.Attendance.Create(ctx, r)
	if err != nil {
		s.failed("RecordAttendance", err, logger.StudentID(params.StudentID))
		return InvalidID, nil
	}

	s.invalidate(ctx, r.StudentID)
	return id, nil
}

// GetAttendance returns one attendance record.
func (s *Store) GetAttendance(ctx context.Context, id int64) (*attendance.Record, bool) {
	r, err := s.repos.Attendance.GetByID(ctx, id)
	if err != nil {
		s.failed("GetAttendance", err, logger.RecordID(id))
		return nil, false
	}
	return r, true
}

// AttendanceByStudent returns a student's records in week order.
func (s *Store) AttendanceByStudent(ctx context.Context, studentID int64) []*attendance.Record {
	list, _ := s.StudentAttendance(ctx, studentID)
	return list
}

// StudentAttendance is AttendanceByStudent that also reports whether the
// read succeeded, so callers can tell "no records" from a storage failure.
func (s *Store) StudentAttendance(ctx context.Context, studentID int64) ([]*attendance.Record, bool) {
	list, err := s.repos.Attendance.ListByStudent(ctx, studentID)
	if err != nil {
		s.failed("AttendanceByStudent", err, logger.StudentID(studentID))
	}
	return orEmpty(list, err), err == nil
}

// AllAttendance returns every record joined with the student's name.
func (s *Store) AllAttendance(ctx context.Context) []*attendance.Entry {
	list, err := s.repos.Attendance.ListAll(ctx)
	if err != nil {
		s.failed("AllAttendance", err)
	}
	return orEmpty(list, err)
}

// UpdateAttendance changes the status of one record.
func (s *Store) UpdateAttendance(ctx context.Context, id int64, status attendance.Status) (UpdateResult, error) {
	if !status.IsValid() {
		return UpdateFailed, shared.InvalidToken("attendance", "attendance status", string(status))
	}
	studentID, ok, err := s.repos.Attendance.UpdateStatus(ctx, id, status)
	return s.mutation(ctx, "UpdateAttendance", id, studentID, ok, err), nil
}

// DeleteAttendance removes one record.
func (s *Store) DeleteAttendance(ctx context.Context, id int64) bool {
	studentID, ok, err := s.repos.Attendance.Delete(ctx, id)
	return s.mutation(ctx, "DeleteAttendance", id, studentID, ok, err).Applied()
}

// CountAttendance returns the number of attendance records.
func (s *Store) CountAttendance(ctx context.Context) (int, bool) {
	n, err := s.repos.Attendance.Count(ctx)
	if err != nil {
		s.failed("CountAttendance", err)
		return 0, false
	}
	return n, true
}

// ─────────────────────────────────────────────────────────────────────────────
// Wellbeing surveys
// ─────────────────────────────────────────────────────────────────────────────

// AddSurvey stores one weekly survey.
func (s *Store) AddSurvey(ctx context.Context, params wellbeing.NewRecordParams) (int64, error) {
	r, err := wellbeing.NewRecord(params)
	if err != nil {
		return InvalidID, err
	}

	id, err := s.repos.Wellbeing.Create(ctx, r)
	if err != nil {
		s.failed("AddSurvey", err, logger.StudentID(params.StudentID))
		return InvalidID, nil
	}

	s.invalidate(ctx, r.StudentID)
	return id, nil
}

// GetSurvey returns one survey.
func (s *Store) GetSurvey(ctx context.Context, id int64) (*wellbeing.Record, bool) {
	r, err := s.repos.Wellbeing.GetByID(ctx, id)
	if err != nil {
		s.failed("GetSurvey", err, logger.RecordID(id))
		return nil, false
	}
	return r, true
}

// SurveysByStudent returns a student's surveys in week order.
func (s *Store) SurveysByStudent(ctx context.Context, studentID int64) []*wellbeing.Record {
	list, _ := s.StudentSurveys(ctx, studentID)
	return list
}

// StudentSurveys is SurveysByStudent with a success flag.
func (s *Store) StudentSurveys(ctx context.Context, studentID int64) ([]*wellbeing.Record, bool) {
	list, err := s.repos.Wellbeing.ListByStudent(ctx, studentID)
	if err != nil {
		s.failed("SurveysByStudent", err, logger.StudentID(studentID))
	}
	return orEmpty(list, err), err == nil
}

// AllSurveys returns every survey.
func (s *Store) AllSurveys(ctx context.Context) []*wellbeing.Record {
	list, err := s.repos.Wellbeing.ListAll(ctx)
	if err != nil {
		s.failed("AllSurveys", err)
	}
	return orEmpty(list, err)
}

// UpdateSurvey applies the supplied fields of patch.
func (s *Store) UpdateSurvey(ctx context.Context, id int64, patch wellbeing.Patch) (UpdateResult, error) {
	if patch.IsEmpty() {
		s.log.Info("no changes made", logger.Operation("UpdateSurvey"), logger.RecordID(id))
		return UpdateNoChanges, nil
	}
	if err := patch.Validate(); err != nil {
		return UpdateFailed, err
	}

	studentID, ok, err := s.repos.Wellbeing.Update(ctx, id, patch)
	return s.mutation(ctx, "UpdateSurvey", id, studentID, ok, err), nil
}

// DeleteSurvey removes one survey.
func (s *Store) DeleteSurvey(ctx context.Context, id int64) bool {
	studentID, ok, err := s.repos.Wellbeing.Delete(ctx, id)
	return s.mutation(ctx, "DeleteSurvey", id, studentID, ok, err).Applied()
}

// CountSurveys returns the number of surveys.
func (s *Store) CountSurveys(ctx context.Context) (int, bool) {
	n, err := s.repos.Wellbeing.Count(ctx)
	if err != nil {
		s.failed("CountSurveys", err)
		return 0, false
	}
	return n, true
}

// ─────────────────────────────────────────────────────────────────────────────
// Coursework
// ─────────────────────────────────────────────────────────────────────────────

// AddCoursework stores one assignment entry.
func (s *Store) AddCoursework(ctx context.Context, params coursework.NewEntryParams) (int64, error) {
	e, err := coursework.NewEntry(params)
	if err != nil {
		return InvalidID, err
	}

	id, err := s.repos.Coursework.Create(ctx, e)
	if err != nil {
		s.failed("AddCoursework", err, logger.StudentID(params.StudentID))
		return InvalidID, nil
	}

	s.invalidate(ctx, e.StudentID)
	return id, nil
}

// GetCoursework returns one entry.
func (s *Store) GetCoursework(ctx context.Context, id int64) (*coursework.Entry, bool) {
	e, err := s.repos.Coursework.GetByID(ctx, id)
	if err != nil {
		s.failed("GetCoursework", err, logger.RecordID(id))
		return nil, false
	}
	return e, true
}

// CourseworkByStudent returns a student's entries by submission date.
func (s *Store) CourseworkByStudent(ctx context.Context, studentID int64) []*coursework.Entry {
	list, _ := s.StudentCoursework(ctx, studentID)
	return list
}

// StudentCoursework is CourseworkByStudent with a success flag.
func (s *Store) StudentCoursework(ctx context.Context, studentID int64) ([]*coursework.Entry, bool) {
	list, err := s.repos.Coursework.ListByStudent(ctx, studentID)
	if err != nil {
		s.failed("CourseworkByStudent", err, logger.StudentID(studentID))
	}
	return orEmpty(list, err), err == nil
}

// AllCoursework returns every entry.
func (s *Store) AllCoursework(ctx context.Context) []*coursework.Entry {
	list, err := s.repos.Coursework.ListAll(ctx)
	if err != nil {
		s.failed("AllCoursework", err)
	}
	return orEmpty(list, err)
}

// UpdateCoursework applies the supplied fields of patch.
func (s *Store) UpdateCoursework(ctx context.Context, id int64, patch coursework.Patch) (UpdateResult, error) {
	if patch.IsEmpty() {
		s.log.Info("no changes made", logger.Operation("UpdateCoursework"), logger.RecordID(id))
		return UpdateNoChanges, nil
	}
	if err := patch.Validate(); err != nil {
		return UpdateFailed, err
	}

	studentID, ok, err := s.repos.Coursework.Update(ctx, id, patch)
	return s.mutation(ctx, "UpdateCoursework", id, studentID, ok, err), nil
}

// DeleteCoursework removes one entry.
func (s *Store) DeleteCoursework(ctx context.Context, id int64) bool {
	studentID, ok, err := s.repos.Coursework.Delete(ctx, id)
	return s.mutation(ctx, "DeleteCoursework", id, studentID, ok, err).Applied()
}

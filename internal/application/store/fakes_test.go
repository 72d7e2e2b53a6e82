package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/campuscare/wellbeing-hub/internal/domain/alert"
	"github.com/campuscare/wellbeing-hub/internal/domain/attendance"
	"github.com/campuscare/wellbeing-hub/internal/domain/audit"
	"github.com/campuscare/wellbeing-hub/internal/domain/coursework"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/student"
	"github.com/campuscare/wellbeing-hub/internal/domain/user"
	"github.com/campuscare/wellbeing-hub/internal/domain/wellbeing"
)

var errDown = errors.New("connection refused")

// memStudents is an in-memory student.Repository. Set err to make every call
// fail. onDelete runs after a student is removed, the way the database
// cascade removes dependent rows.
type memStudents struct {
	rows     map[int64]*student.Student
	nextID   int64
	err      error
	onDelete func(id int64)
}

func newMemStudents() *memStudents {
	return &memStudents{rows: map[int64]*student.Student{}}
}

func (m *memStudents) Create(_ context.Context, s *student.Student) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	for _, r := range m.rows {
		if r.Email == s.Email {
			return 0, shared.ErrStudentAlreadyExists
		}
	}
	m.nextID++
	cp := *s
	cp.ID = m.nextID
	m.rows[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memStudents) GetByID(_ context.Context, id int64) (*student.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStudents) GetAll(_ context.Context) ([]*student.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*student.Student, 0, len(m.rows))
	for _, s := range m.rows {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStudents) Search(ctx context.Context, term string) ([]*student.Student, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	var out []*student.Student
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.Name), term) || strings.Contains(strings.ToLower(s.Email), term) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudents) Update(_ context.Context, id int64, p student.Patch) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	s, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.EnrollmentYear != nil {
		s.EnrollmentYear = *p.EnrollmentYear
	}
	return true, nil
}

func (m *memStudents) Delete(_ context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	if m.onDelete != nil {
		m.onDelete(id)
	}
	return true, nil
}

func (m *memStudents) Count(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.rows), nil
}

type memAttendance struct {
	rows   []*attendance.Record
	nextID int64
	err    error
}

func (m *memAttendance) Create(_ context.Context, r *attendance.Record) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	cp := *r
	cp.ID = m.nextID
	m.rows = append(m.rows, &cp)
	return cp.ID, nil
}

func (m *memAttendance) find(id int64) *attendance.Record {
	for _, r := range m.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (m *memAttendance) GetByID(_ context.Context, id int64) (*attendance.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	r := m.find(id)
	if r == nil {
		return nil, shared.NewDomainError("attendance", "Find", shared.ErrNotFound, "attendance record not found")
	}
	return r, nil
}

func (m *memAttendance) ListByStudent(_ context.Context, studentID int64) ([]*attendance.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*attendance.Record
	for _, r := range m.rows {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAttendance) ListAll(_ context.Context) ([]*attendance.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*attendance.Entry, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, &attendance.Entry{Record: *r})
	}
	return out, nil
}

func (m *memAttendance) UpdateStatus(_ context.Context, id int64, status attendance.Status) (int64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	r := m.find(id)
	if r == nil {
		return 0, false, nil
	}
	r.Status = status
	return r.StudentID, true, nil
}

func (m *memAttendance) Delete(_ context.Context, id int64) (int64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return r.StudentID, true, nil
		}
	}
	return 0, false, nil
}

func (m *memAttendance) Count(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.rows), nil
}

type memWellbeing struct {
	rows   []*wellbeing.Record
	nextID int64
	err    error
}

func (m *memWellbeing) Create(_ context.Context, r *wellbeing.Record) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	cp := *r
	cp.ID = m.nextID
	m.rows = append(m.rows, &cp)
	return cp.ID, nil
}

func (m *memWellbeing) GetByID(_ context.Context, id int64) (*wellbeing.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, shared.NewDomainError("wellbeing", "Find", shared.ErrNotFound, "survey not found")
}

func (m *memWellbeing) ListByStudent(_ context.Context, studentID int64) ([]*wellbeing.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*wellbeing.Record
	for _, r := range m.rows {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memWellbeing) ListAll(_ context.Context) ([]*wellbeing.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func (m *memWellbeing) Update(_ context.Context, id int64, p wellbeing.Patch) (int64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	for _, r := range m.rows {
		if r.ID != id {
			continue
		}
		if p.StressLevel != nil {
			r.StressLevel = *p.StressLevel
		}
		if p.SleepHours != nil {
			r.SleepHours = *p.SleepHours
		}
		if p.Notes != nil {
			r.Notes = *p.Notes
		}
		return r.StudentID, true, nil
	}
	return 0, false, nil
}

func (m *memWellbeing) Delete(_ context.Context, id int64) (int64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return r.StudentID, true, nil
		}
	}
	return 0, false, nil
}

func (m *memWellbeing) Count(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.rows), nil
}

type memCoursework struct {
	rows   []*coursework.Entry
	nextID int64
	err    error
}

func (m *memCoursework) Create(_ context.Context, e *coursework.Entry) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	cp := *e
	cp.ID = m.nextID
	m.rows = append(m.rows, &cp)
	return cp.ID, nil
}

func (m *memCoursework) GetByID(_ context.Context, id int64) (*coursework.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, e := range m.rows {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.NewDomainError("coursework", "Find", shared.ErrNotFound, "coursework not found")
}

func (m *memCoursework) ListByStudent(_ context.Context, studentID int64) ([]*coursework.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*coursework.Entry
	for _, e := range m.rows {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memCoursework) ListAll(_ context.Context) ([]*coursework.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func (m *memCoursework) Update(_ context.Context, id int64, p coursework.Patch) (int64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	for _, e := range m.rows {
		if e.ID != id {
			continue
		}
		if p.Status != nil {
			e.Status = *p.Status
		}
		if p.Grade != nil {
			g := *p.Grade
			e.Grade = &g
		}
		return e.StudentID, true, nil
	}
	return 0, false, nil
}

func (m *memCoursework) Delete(_ context.Context, id int64) (int64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	for i, e := range m.rows {
		if e.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return e.StudentID, true, nil
		}
	}
	return 0, false, nil
}

type memUsers struct {
	rows   map[string]*user.User
	nextID int64
	err    error
}

func (m *memUsers) Create(_ context.Context, u *user.User) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.rows[u.Username]; ok {
		return 0, shared.ErrUserAlreadyExists
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.rows[u.Username] = &cp
	return cp.ID, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.rows[username]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.rows {
		if u.ID == id {
			u.PasswordHash = hash
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Count(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.rows), nil
}

type memAlerts struct {
	rows   []*alert.Alert
	nextID int64
	err    error
}

func (m *memAlerts) Create(_ context.Context, a *alert.Alert) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	cp := *a
	cp.ID = m.nextID
	m.rows = append(m.rows, &cp)
	return cp.ID, nil
}

func (m *memAlerts) ListByStudent(_ context.Context, studentID int64) ([]*alert.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*alert.Alert
	for _, a := range m.rows {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAlerts) ListOpen(_ context.Context) ([]*alert.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*alert.Alert
	for _, a := range m.rows {
		if !a.Resolved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAlerts) Resolve(_ context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, a := range m.rows {
		if a.ID == id {
			return a.Resolve() == nil, nil
		}
	}
	return false, nil
}

type memAudit struct {
	rows   []*audit.Log
	nextID int64
	err    error
}

func (m *memAudit) Append(_ context.Context, l *audit.Log) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	cp := *l
	cp.ID = m.nextID
	m.rows = append(m.rows, &cp)
	return cp.ID, nil
}

func (m *memAudit) ListRecent(_ context.Context, limit int) ([]*audit.Log, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*audit.Log, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.rows[i])
	}
	return out, nil
}

func (m *memAudit) ListByUser(_ context.Context, userID int64) ([]*audit.Log, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*audit.Log
	for _, l := range m.rows {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fixture struct {
	students   *memStudents
	attendance *memAttendance
	wellbeing  *memWellbeing
	coursework *memCoursework
	users      *memUsers
	alerts     *memAlerts
	audit      *memAudit
}

func newFixture() *fixture {
	f := &fixture{
		students:   newMemStudents(),
		attendance: &memAttendance{},
		wellbeing:  &memWellbeing{},
		coursework: &memCoursework{},
		users:      &memUsers{rows: map[string]*user.User{}},
		alerts:     &memAlerts{},
		audit:      &memAudit{},
	}
	f.students.onDelete = f.cascade
	return f
}

// cascade removes every row that references the student.
func (f *fixture) cascade(studentID int64) {
	f.attendance.rows = keep(f.attendance.rows, func(r *attendance.Record) bool { return r.StudentID != studentID })
	f.wellbeing.rows = keep(f.wellbeing.rows, func(r *wellbeing.Record) bool { return r.StudentID != studentID })
	f.coursework.rows = keep(f.coursework.rows, func(e *coursework.Entry) bool { return e.StudentID != studentID })
	f.alerts.rows = keep(f.alerts.rows, func(a *alert.Alert) bool { return a.StudentID != studentID })
}

func keep[T any](rows []T, fn func(T) bool) []T {
	out := rows[:0]
	for _, r := range rows {
		if fn(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fixture) repos() Repositories {
	return Repositories{
		Students:   f.students,
		Attendance: f.attendance,
		Wellbeing:  f.wellbeing,
		Coursework: f.coursework,
		Users:      f.users,
		Alerts:     f.alerts,
		Audit:      f.audit,
	}
}

type recordingInvalidator struct {
	ids []int64
}

func (r *recordingInvalidator) InvalidateStudent(_ context.Context, studentID int64) {
	r.ids = append(r.ids, studentID)
}

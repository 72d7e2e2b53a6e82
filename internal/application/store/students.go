package store

import (
	"context"

	"github.com/campuscare/wellbeing-hub/internal/domain/student"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// AddStudent validates and stores a student. It returns the new ID, or
// InvalidID when storage rejects the row (for example a duplicate email).
func (s *Store) AddStudent(ctx context.Context, params student.NewStudentParams) (int64, error) {
	st, err := student.NewStudent(params)
	if err != nil {
		return InvalidID, err
	}

	id, err := s.repos.Students.Create(ctx, st)
	if err != nil {
		s.failed("AddStudent", err, logger.String("email", st.Email))
		return InvalidID, nil
	}

	s.log.Info("student added", logger.StudentID(id))
	return id, nil
}

// GetStudent returns the student with id.
func (s *Store) GetStudent(ctx context.Context, id int64) (*student.Student, bool) {
	st, err := s.repos.Students.GetByID(ctx, id)
	if err != nil {
		s.failed("GetStudent", err, logger.StudentID(id))
		return nil, false
	}
	return st, true
}

// AllStudents returns every student ordered by ID.
func (s *Store) AllStudents(ctx context.Context) []*student.Student {
	list, err := s.repos.Students.GetAll(ctx)
	if err != nil {
		s.failed("AllStudents", err)
	}
	return orEmpty(list, err)
}

// SearchStudents matches term case-insensitively against name or email.
func (s *Store) SearchStudents(ctx context.Context, term string) []*student.Student {
	list, err := s.repos.Students.Search(ctx, term)
	if err != nil {
		s.failed("SearchStudents", err, logger.String("term", term))
	}
	return orEmpty(list, err)
}

// UpdateStudent applies the supplied fields of patch.
func (s *Store) UpdateStudent(ctx context.Context, id int64, patch student.Patch) (UpdateResult, error) {
	if patch.IsEmpty() {
		s.log.Info("no changes made", logger.Operation("UpdateStudent"), logger.StudentID(id))
		return UpdateNoChanges, nil
	}
	if err := patch.Validate(); err != nil {
		return UpdateFailed, err
	}

	ok, err := s.repos.Students.Update(ctx, id, patch.Normalized())
	return s.mutation(ctx, "UpdateStudent", id, id, ok, err), nil
}

// DeleteStudent removes a student together with every dependent record.
func (s *Store) DeleteStudent(ctx context.Context, id int64) bool {
	ok, err := s.repos.Students.Delete(ctx, id)
	if err != nil {
		s.failed("DeleteStudent", err, logger.StudentID(id))
		return false
	}
	if ok {
		s.invalidate(ctx, id)
		s.log.Info("student deleted", logger.StudentID(id))
	}
	return ok
}

// CountStudents returns the number of students, or false if it could not be
// read.
func (s *Store) CountStudents(ctx context.Context) (int, bool) {
	n, err := s.repos.Students.Count(ctx)
	if err != nil {
		s.failed("CountStudents", err)
		return 0, false
	}
	return n, true
}

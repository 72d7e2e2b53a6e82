package attendance

import "context"

// Repository defines storage operations for attendance records.
type Repository interface {
	Create(ctx context.Context, r *Record) (int64, error)
	GetByID(ctx context.Context, id int64) (*Record, error)

	// ListByStudent returns records ordered by week.
	ListByStudent(ctx context.Context, studentID int64) ([]*Record, error)

	// ListAll returns every record with its student's name, ordered by week
	// then name.
	ListAll(ctx context.Context) ([]*Entry, error)

	// UpdateStatus corrects the status of one record. Reports whether a row
	// changed and the owning student.
	UpdateStatus(ctx context.Context, id int64, status Status) (studentID int64, ok bool, err error)

	// Delete removes one record and returns its owning student.
	Delete(ctx context.Context, id int64) (studentID int64, ok bool, err error)

	Count(ctx context.Context) (int, error)
}

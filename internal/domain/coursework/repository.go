package coursework

import "context"

// Repository defines storage operations for coursework.
type Repository interface {
	Create(ctx context.Context, e *Entry) (int64, error)
	GetByID(ctx context.Context, id int64) (*Entry, error)

	// ListByStudent returns entries ordered by submission date.
	ListByStudent(ctx context.Context, studentID int64) ([]*Entry, error)
	ListAll(ctx context.Context) ([]*Entry, error)

	Update(ctx context.Context, id int64, patch Patch) (studentID int64, ok bool, err error)
	Delete(ctx context.Context, id int64) (studentID int64, ok bool, err error)
}

package wellbeing

import "context"

// Repository defines storage operations for wellbeing surveys.
type Repository interface {
	Create(ctx context.Context, r *Record) (int64, error)
	GetByID(ctx context.Context, id int64) (*Record, error)

	// ListByStudent returns surveys ordered by week.
	ListByStudent(ctx context.Context, studentID int64) ([]*Record, error)
	ListAll(ctx context.Context) ([]*Record, error)

	Update(ctx context.Context, id int64, patch Patch) (studentID int64, ok bool, err error)
	Delete(ctx context.Context, id int64) (studentID int64, ok bool, err error)

	Count(ctx context.Context) (int, error)
}

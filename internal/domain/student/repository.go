package student

import "context"

// Repository defines storage operations for students.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create stores s and returns the assigned ID.
	// Returns shared.ErrStudentAlreadyExists when the email is taken.
	Create(ctx context.Context, s *Student) (int64, error)

	// GetByID returns shared.ErrStudentNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*Student, error)

	// GetAll returns every student ordered by ID.
	GetAll(ctx context.Context) ([]*Student, error)

	// Search matches term case-insensitively anywhere in name or email,
	// ordered by name.
	Search(ctx context.Context, term string) ([]*Student, error)

	// Update applies a non-empty patch and reports whether a row changed.
	Update(ctx context.Context, id int64, patch Patch) (bool, error)

	// Delete removes the student together with every dependent record in a
	// single transaction. Reports whether the student existed.
	Delete(ctx context.Context, id int64) (bool, error)

	Count(ctx context.Context) (int, error)
}

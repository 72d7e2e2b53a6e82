package alert

import "context"

// Repository defines storage operations for alerts. There is no delete:
// alerts only disappear together with their student.
type Repository interface {
	Create(ctx context.Context, a *Alert) (int64, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*Alert, error)
	ListOpen(ctx context.Context) ([]*Alert, error)

	// Resolve flips an open alert to resolved. Reports false when the alert
	// does not exist or is already resolved.
	Resolve(ctx context.Context, id int64) (bool, error)
}

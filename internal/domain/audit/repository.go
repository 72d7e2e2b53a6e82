package audit

import "context"

// Repository appends and reads audit entries.
type Repository interface {
	Append(ctx context.Context, l *Log) (int64, error)

	// ListRecent returns the newest entries first.
	ListRecent(ctx context.Context, limit int) ([]*Log, error)
	ListByUser(ctx context.Context, userID int64) ([]*Log, error)
}

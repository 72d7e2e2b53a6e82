package user

import "context"

// Repository defines storage operations for accounts.
type Repository interface {
	// Create returns shared.ErrUserAlreadyExists when the username is taken.
	Create(ctx context.Context, u *User) (int64, error)

	// GetByUsername returns shared.ErrUserNotFound when no row matches.
	GetByUsername(ctx context.Context, username string) (*User, error)

	UpdatePasswordHash(ctx context.Context, id int64, hash string) (bool, error)

	Count(ctx context.Context) (int, error)
}

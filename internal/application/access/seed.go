package access

import (
	"context"
	"errors"

	"github.com/campuscare/wellbeing-hub/internal/domain/user"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// ErrUserCountUnavailable is returned when seeding cannot tell whether the
// users table is empty.
var ErrUserCountUnavailable = errors.New("access: user count unavailable")

// AccountStore creates accounts.
type AccountStore interface {
	CountUsers(ctx context.Context) (int, bool)
	AddUser(ctx context.Context, params user.NewUserParams) (int64, error)
}

// DefaultAccount is a staff account created on first start.
type DefaultAccount struct {
	Username  string
	FirstName string
	LastName  string
	Password  string
	Role      user.Role
}

// DefaultAccounts returns the admin, officer and director accounts with the
// given passwords.
func DefaultAccounts(adminPassword, officerPassword, directorPassword string) []DefaultAccount {
	return []DefaultAccount{
		{Username: "admin", FirstName: "System", LastName: "Administrator", Password: adminPassword, Role: user.RoleAdmin},
		{Username: "wellbeing", FirstName: "Wellbeing", LastName: "Officer", Password: officerPassword, Role: user.RoleWellbeingOfficer},
		{Username: "director", FirstName: "Course", LastName: "Director", Password: directorPassword, Role: user.RoleCourseDirector},
	}
}

// SeedDefaultUsers creates accounts only when no user exists yet. It returns
// how many were created.
func SeedDefaultUsers(ctx context.Context, store AccountStore, hasher PasswordHasher, accounts []DefaultAccount, log *logger.Logger) (int, error) {
	if log == nil {
		log = logger.Nop()
	}

	n, ok := store.CountUsers(ctx)
	if !ok {
		return 0, ErrUserCountUnavailable
	}
	if n > 0 {
		log.Debug("users present, skipping seed", logger.Int("users", n))
		return 0, nil
	}

	created := 0
	for _, a := range accounts {
		id, err := store.AddUser(ctx, user.NewUserParams{
			Username:     a.Username,
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			PasswordHash: hasher.Hash(a.Password),
			Role:         a.Role,
		})
		if err != nil {
			return created, err
		}
		if id > 0 {
			created++
		}
	}

	log.Info("default users created", logger.Int("count", created))
	return created, nil
}

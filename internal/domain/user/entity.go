// Package user models staff accounts and their roles.
package user

import (
	"strings"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
)

const domain = "user"

// ══════════════════════════════════════════════════════════════════════════════
// ROLES
// ══════════════════════════════════════════════════════════════════════════════

// Role is the permission level of an account.
type Role string

const (
	RoleAdmin            Role = "ADMIN"
	RoleWellbeingOfficer Role = "WELLBEING_OFFICER"
	RoleCourseDirector   Role = "COURSE_DIRECTOR"
	RoleStudent          Role = "STUDENT"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleWellbeingOfficer, RoleCourseDirector, RoleStudent:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a raw token into a Role.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.IsValid() {
		return "", shared.InvalidToken(domain, "role", raw)
	}
	return r, nil
}

// Rank orders roles for permission checks: ADMIN=3, WELLBEING_OFFICER=2,
// COURSE_DIRECTOR=1, anything else 0.
//
// This is a total order, so an officer passes every check a director
// passes. The two roles cover different responsibilities; keep the order
// until product decides otherwise.
func Rank(r Role) int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleWellbeingOfficer:
		return 2
	case RoleCourseDirector:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether r ranks at least as high as required.
func (r Role) Satisfies(required Role) bool {
	return Rank(r) >= Rank(required)
}

// CanViewPersonalWellbeing reports whether r may see another student's
// individual wellbeing data.
func (r Role) CanViewPersonalWellbeing() bool {
	return r == RoleWellbeingOfficer || r == RoleAdmin
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// User is a staff account. PasswordHash is never plaintext.
type User struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanViewPersonalWellbeing is evaluated from the current role on every call.
func (u *User) CanViewPersonalWellbeing() bool {
	return u.Role.CanViewPersonalWellbeing()
}

// NewUserParams holds the fields for a new account.
type NewUserParams struct {
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
}

// NewUser validates params and builds an account.
func NewUser(params NewUserParams) (*User, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, shared.Empty(domain, "username")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return nil, shared.Invalid(domain, "username must not contain whitespace")
	}
	if params.PasswordHash == "" {
		return nil, shared.Empty(domain, "password hash")
	}
	if !params.Role.IsValid() {
		return nil, shared.InvalidToken(domain, "role", string(params.Role))
	}

	return &User{
		Username:     username,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Credentials is what the store hands to the auth collaborator.
type Credentials struct {
	UserID       int64
	Username     string
	PasswordHash string
	Role         Role
	DisplayName  string
}

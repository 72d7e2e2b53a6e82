// Package access holds the logged-in session and answers permission checks
// against the role ranking.
package access

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campuscare/wellbeing-hub/internal/domain/audit"
	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
	"github.com/campuscare/wellbeing-hub/internal/domain/user"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// CredentialStore is the part of the store the policy needs.
type CredentialStore interface {
	LookupCredentials(ctx context.Context, username string) (user.Credentials, bool)
	SetPasswordHash(ctx context.Context, userID int64, hash string) bool
	RecordAudit(ctx context.Context, userID int64, action audit.ActionType, entityType string, entityID int64, details string) (int64, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) string
	Verify(password, hash string) bool
}

// Session is the currently logged-in user.
type Session struct {
	ID          uuid.UUID
	UserID      int64
	Username    string
	DisplayName string
	Role        user.Role
	StartedAt   time.Time
}

// Policy owns at most one active session.
type Policy struct {
	store  CredentialStore
	hasher PasswordHasher
	log    *logger.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *Session
}

// NewPolicy creates a Policy with no active session.
func NewPolicy(store CredentialStore, hasher PasswordHasher, log *logger.Logger) *Policy {
	if log == nil {
		log = logger.Nop()
	}
	return &Policy{
		store:  store,
		hasher: hasher,
		log:    log.With(logger.Component("access")),
		now:    time.Now,
	}
}

// Login checks the password and starts a session, replacing any previous
// one. Unknown users and wrong passwords both return ErrBadCredentials.
func (p *Policy) Login(ctx context.Context, username, password string) (Session, error) {
	creds, ok := p.store.LookupCredentials(ctx, username)
	if !ok || !p.hasher.Verify(password, creds.PasswordHash) {
		p.log.Warn("login rejected", logger.Username(username))
		return Session{}, shared.ErrBadCredentials
	}

	s := &Session{
		ID:          uuid.New(),
		UserID:      creds.UserID,
		Username:    creds.Username,
		DisplayName: creds.DisplayName,
		Role:        creds.Role,
		StartedAt:   p.now().UTC(),
	}

	p.mu.Lock()
	p.current = s
	p.mu.Unlock()

	p.audit(ctx, s.UserID, audit.ActionLogin, "session "+s.ID.String())
	p.log.Info("user logged in",
		logger.UserID(s.UserID),
		logger.Username(s.Username),
		logger.String("role", string(s.Role)),
	)
	return *s, nil
}

// Logout ends the active session. It returns false if there was none.
func (p *Policy) Logout(ctx context.Context) bool {
	p.mu.Lock()
	s := p.current
	p.current = nil
	p.mu.Unlock()

	if s == nil {
		return false
	}
	p.audit(ctx, s.UserID, audit.ActionLogout, "session "+s.ID.String())
	p.log.Info("user logged out", logger.UserID(s.UserID))
	return true
}

// Current returns the active session.
func (p *Policy) Current() (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return Session{}, false
	}
	return *p.current, true
}

// HasPermission reports whether the logged-in user ranks at least as high as
// required. It is false without a session.
func (p *Policy) HasPermission(required user.Role) bool {
	s, ok := p.Current()
	if !ok {
		return false
	}
	return s.Role.Satisfies(required)
}

// CanViewPersonalWellbeing reports whether the logged-in user may see
// individual wellbeing records.
func (p *Policy) CanViewPersonalWellbeing() bool {
	s, ok := p.Current()
	return ok && s.Role.CanViewPersonalWellbeing()
}

// ChangePassword replaces the logged-in user's password after checking the
// current one.
func (p *Policy) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	s, ok := p.Current()
	if !ok {
		return shared.ErrNoActiveSession
	}
	if newPassword == "" {
		return shared.Empty("access", "new password")
	}

	creds, ok := p.store.LookupCredentials(ctx, s.Username)
	if !ok || !p.hasher.Verify(currentPassword, creds.PasswordHash) {
		return shared.ErrBadCredentials
	}

	if !p.store.SetPasswordHash(ctx, s.UserID, p.hasher.Hash(newPassword)) {
		return shared.NewDomainError("access", "ChangePassword", shared.ErrStorage, "password could not be saved")
	}

	p.audit(ctx, s.UserID, audit.ActionUpdate, "password changed")
	p.log.Info("password changed", logger.UserID(s.UserID))
	return nil
}

func (p *Policy) audit(ctx context.Context, userID int64, action audit.ActionType, details string) {
	if _, err := p.store.RecordAudit(ctx, userID, action, "user", userID, details); err != nil {
		p.log.Warn("audit entry rejected", logger.UserID(userID), logger.Err(err))
	}
}

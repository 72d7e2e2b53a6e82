package store

import (
	"context"
	"strconv"

	"github.com/campuscare/wellbeing-hub/internal/domain/alert"
	"github.com/campuscare/wellbeing-hub/internal/domain/audit"
	"github.com/campuscare/wellbeing-hub/internal/domain/user"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

// AddUser stores a staff account. params.PasswordHash must already be hashed.
func (s *Store) AddUser(ctx context.Context, params user.NewUserParams) (int64, error) {
	u, err := user.NewUser(params)
	if err != nil {
		return InvalidID, err
	}

	id, err := s.repos.Users.Create(ctx, u)
	if err != nil {
		s.failed("AddUser", err, logger.Username(u.Username))
		return InvalidID, nil
	}

	s.log.Info("user added", logger.UserID(id), logger.Username(u.Username))
	return id, nil
}

// LookupCredentials returns what login needs to check a password.
func (s *Store) LookupCredentials(ctx context.Context, username string) (user.Credentials, bool) {
	u, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		s.failed("LookupCredentials", err, logger.Username(username))
		return user.Credentials{}, false
	}
	return user.Credentials{
		UserID:       u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		DisplayName:  u.FullName(),
	}, true
}

// SetPasswordHash replaces a user's stored hash.
func (s *Store) SetPasswordHash(ctx context.Context, userID int64, hash string) bool {
	if hash == "" {
		return false
	}
	ok, err := s.repos.Users.UpdatePasswordHash(ctx, userID, hash)
	if err != nil {
		s.failed("SetPasswordHash", err, logger.UserID(userID))
		return false
	}
	return ok
}

// CountUsers returns the number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int, bool) {
	n, err := s.repos.Users.Count(ctx)
	if err != nil {
		s.failed("CountUsers", err)
		return 0, false
	}
	return n, true
}

// ─────────────────────────────────────────────────────────────────────────────
// Alerts
// ─────────────────────────────────────────────────────────────────────────────

// RaiseAlert opens an alert for a student.
func (s *Store) RaiseAlert(ctx context.Context, studentID int64, t alert.Type, reason string) (int64, error) {
	a, err := alert.NewAlert(studentID, t, reason)
	if err != nil {
		return InvalidID, err
	}

	id, err := s.repos.Alerts.Create(ctx, a)
	if err != nil {
		s.failed("RaiseAlert", err, logger.StudentID(studentID))
		return InvalidID, nil
	}

	s.log.Info("alert raised",
		logger.StudentID(studentID),
		logger.RecordID(id),
		logger.String("type", string(t)),
	)
	return id, nil
}

// AlertsByStudent returns every alert of a student, open or resolved.
func (s *Store) AlertsByStudent(ctx context.Context, studentID int64) []*alert.Alert {
	list, err := s.repos.Alerts.ListByStudent(ctx, studentID)
	if err != nil {
		s.failed("AlertsByStudent", err, logger.StudentID(studentID))
	}
	return orEmpty(list, err)
}

// OpenAlerts returns every unresolved alert.
func (s *Store) OpenAlerts(ctx context.Context) []*alert.Alert {
	list, err := s.repos.Alerts.ListOpen(ctx)
	if err != nil {
		s.failed("OpenAlerts", err)
	}
	return orEmpty(list, err)
}

// ResolveAlert closes an open alert. It returns false if the alert does not
// exist or was already resolved.
func (s *Store) ResolveAlert(ctx context.Context, id int64) bool {
	ok, err := s.repos.Alerts.Resolve(ctx, id)
	if err != nil {
		s.failed("ResolveAlert", err, logger.RecordID(id))
		return false
	}
	return ok
}

// ─────────────────────────────────────────────────────────────────────────────
// Audit trail
// ─────────────────────────────────────────────────────────────────────────────

// RecordAudit appends an audit entry. entityID may be zero for actions
// without a target record.
func (s *Store) RecordAudit(ctx context.Context, userID int64, action audit.ActionType, entityType string, entityID int64, details string) (int64, error) {
	ref := ""
	if entityID > 0 {
		ref = strconv.FormatInt(entityID, 10)
	}
	l, err := audit.NewLog(userID, action, entityType, ref, details)
	if err != nil {
		return InvalidID, err
	}

	id, err := s.repos.Audit.Append(ctx, l)
	if err != nil {
		s.failed("RecordAudit", err, logger.UserID(userID), logger.String("action", string(action)))
		return InvalidID, nil
	}
	return id, nil
}

// RecentAudit returns the newest entries first. A non-positive limit uses the
// repository default.
func (s *Store) RecentAudit(ctx context.Context, limit int) []*audit.Log {
	list, err := s.repos.Audit.ListRecent(ctx, limit)
	if err != nil {
		s.failed("RecentAudit", err)
	}
	return orEmpty(list, err)
}

// AuditByUser returns the entries written by one user.
func (s *Store) AuditByUser(ctx context.Context, userID int64) []*audit.Log {
	list, err := s.repos.Audit.ListByUser(ctx, userID)
	if err != nil {
		s.failed("AuditByUser", err, logger.UserID(userID))
	}
	return orEmpty(list, err)
}

// Package audit models the append-only trail of user actions.
package audit

import (
	"strings"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/domain/shared"
)

const domain = "audit"

// ActionType is what the user did.
type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
	ActionLogin  ActionType = "LOGIN"
	ActionLogout ActionType = "LOGOUT"
	ActionView   ActionType = "VIEW" // sensitive data
	ActionExport ActionType = "EXPORT"
	ActionImport ActionType = "IMPORT"
)

// IsValid reports whether a is one of the known actions.
func (a ActionType) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin,
		ActionLogout, ActionView, ActionExport, ActionImport:
		return true
	default:
		return false
	}
}

func (a ActionType) String() string {
	return string(a)
}

// ParseActionType converts a raw token into an ActionType.
func ParseActionType(raw string) (ActionType, error) {
	a := ActionType(raw)
	if !a.IsValid() {
		return "", shared.InvalidToken(domain, "action type", raw)
	}
	return a, nil
}

// Log is one audit entry. Entries are never updated.
type Log struct {
	ID         int64
	UserID     int64
	EntityType string
	EntityID   string
	Action     ActionType
	Timestamp  time.Time
	Details    string
}

// NewLog validates and builds an entry stamped with the current time.
func NewLog(userID int64, action ActionType, entityType, entityID, details string) (*Log, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError(domain, "Validate", shared.ErrInvalidID, "user id must be positive")
	}
	if !action.IsValid() {
		return nil, shared.InvalidToken(domain, "action type", string(action))
	}
	entityType = strings.TrimSpace(entityType)
	if entityType == "" {
		return nil, shared.Empty(domain, "entity type")
	}

	return &Log{
		UserID:     userID,
		EntityType: entityType,
		EntityID:   strings.TrimSpace(entityID),
		Action:     action,
		Timestamp:  time.Now().UTC(),
		Details:    details,
	}, nil
}

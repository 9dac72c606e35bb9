package service

import (
	"sync"

	bank "github.com/plightick/kursovaya"
)

// SessionKind tags the process-wide session variant.
type SessionKind int

const (
	SessionAnonymous SessionKind = iota
	SessionRegular
	SessionAdmin
)

// Session is the single owned session value. A regular session holds a
// detached in-memory copy of the user; an admin session holds no user data.
// Created by login, destroyed by logout or process exit, never persisted.
type Session struct {
	Kind SessionKind
	User *bank.User
}

// SessionInfo is the read-only projection exposed to the presentation layer.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	Admin         bool   `json:"admin"`
	Username      string `json:"username"`
}

// sessionState owns the session and the mutex that serializes commands:
// at most one command mutates state at a time, matching the one-session,
// one-command-at-a-time model of the ledger.
type sessionState struct {
	mu      sync.Mutex
	session Session
}

func newSessionState() *sessionState {
	return &sessionState{session: Session{Kind: SessionAnonymous}}
}

// info computes the session-derived read properties. Callers hold the lock.
func (s *sessionState) info() SessionInfo {
	switch s.session.Kind {
	case SessionAdmin:
		return SessionInfo{Authenticated: true, Admin: true, Username: bank.AdminUsername}
	case SessionRegular:
		return SessionInfo{Authenticated: true, Username: s.session.User.Username}
	default:
		return SessionInfo{}
	}
}

// regularUser returns the session user or an AuthError for other variants.
// Callers hold the lock.
func (s *sessionState) regularUser() (*bank.User, error) {
	if s.session.Kind != SessionRegular || s.session.User == nil {
		return nil, bank.NewAuthError("authentication required")
	}
	return s.session.User, nil
}

// requireAdmin fails unless the session is the admin variant. Callers hold
// the lock.
func (s *sessionState) requireAdmin() error {
	if s.session.Kind != SessionAdmin {
		return bank.NewAuthError("administrator privileges required")
	}
	return nil
}

// Package auth holds the process-wide session and the login protocol.
package auth

import (
	"sync"

	"homebook/internal/entity"
	"homebook/internal/store"
)

// Session is the process-wide login state. It is write-locked only
// during login, logout and password changes; service calls read it.
type Session struct {
	mu         sync.RWMutex
	tenant     int
	userID     string
	permission entity.Permission
}

// NewSession creates a logged-out session.
func NewSession() *Session {
	return &Session{permission: entity.PermissionNone}
}

// Tenant returns the active tenant number, 0 when logged out.
func (s *Session) Tenant() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenant
}

// User returns the active user id, "" when logged out.
func (s *Session) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Permission returns the active user's access level.
func (s *Session) Permission() entity.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}

// LoggedIn reports whether a login has been accepted.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID != ""
}

// Actor derives the acting identity for one service call. Now is
// re-captured on every call, truncated to whole seconds.
func (s *Session) Actor() store.Actor {
	return store.NewActor(s.User())
}

func (s *Session) set(tenant int, userID string, permission entity.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenant = tenant
	s.userID = userID
	s.permission = permission
}

// Logout clears the session.
func (s *Session) Logout() {
	s.set(0, "", entity.PermissionNone)
}

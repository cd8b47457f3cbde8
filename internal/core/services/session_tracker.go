package services

import (
	"sync"

	"lanmesh/internal/core/domain"
)

// SessionTracker maps transient push-channel sessions to user identities.
// The last session to register for a given identity implicitly becomes
// canonical; concurrent sessions for one user are not supported.
type SessionTracker struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]domain.UserID
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{
		sessions: make(map[domain.SessionID]domain.UserID),
	}
}

// Attach binds a session to a user, replacing any previous binding for
// that session.
func (t *SessionTracker) Attach(sessionID domain.SessionID, userID domain.UserID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[sessionID] = userID
}

// Detach removes the session's binding and returns the owning user.
func (t *SessionTracker) Detach(sessionID domain.SessionID) (domain.UserID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	userID, ok := t.sessions[sessionID]
	if ok {
		delete(t.sessions, sessionID)
	}
	return userID, ok
}

// Resolve returns the user bound to a session, if any.
func (t *SessionTracker) Resolve(sessionID domain.SessionID) (domain.UserID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	userID, ok := t.sessions[sessionID]
	return userID, ok
}

// Clear drops all session mappings. Called on global reset.
func (t *SessionTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions = make(map[domain.SessionID]domain.UserID)
}

// Count returns the number of tracked sessions.
func (t *SessionTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

package domain

import (
	"sync"
	"time"
)

// Session is the per-connection identity as last declared by the client.
type Session struct {
	ID           string
	UserID       string
	Username     string
	Role         Role
	CreatedAt    time.Time
	LastActiveAt time.Time
	mu           sync.RWMutex
}

// NewSession creates a session for a fresh connection id.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Identify records the user behind the connection. Empty values keep the
// previous ones. It reports whether the user id changed.
func (s *Session) Identify(userID, username string, role Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := userID != "" && userID != s.UserID
	if userID != "" {
		s.UserID = userID
	}
	if username != "" {
		s.Username = username
	}
	if role != "" {
		s.Role = role
	}
	s.LastActiveAt = time.Now()
	return changed
}

// GetUserID returns the user ID.
func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

// GetUsername returns the username.
func (s *Session) GetUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username
}

// UpdateActivity updates the last active timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}

package client

import (
	"sync"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

// Session is the authenticated identity of a client: its token and user.
type Session struct {
	mu    sync.RWMutex
	token string
	usr   *user.User
}

func (s *Session) set(token string, usr *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if usr != nil {
		cp := *usr
		s.usr = &cp
	}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the session's user, false when logged out.
func (s *Session) User() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.usr == nil {
		return user.User{}, false
	}
	return *s.usr, true
}

// HasRole reports whether the session's user has one of roles.
func (s *Session) HasRole(roles ...string) bool {
	usr, ok := s.User()
	return ok && core.ContainsString(roles, usr.Role)
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.usr = nil
}

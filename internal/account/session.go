package account

import (
	"context"
	"sync"

	"github.com/vovakirdan/snake-arena/internal/storage"
)

// Session tracks who is logged in on one connection.
type Session struct {
	svc *Service

	mu   sync.RWMutex
	user *storage.User
}

// NewSession creates a logged-out session.
func NewSession(svc *Service) *Session {
	return &Session{svc: svc}
}

// Login authenticates and, on success, makes the user current.
func (s *Session) Login(ctx context.Context, login, password string) (storage.User, error) {
	u, err := s.svc.Login(ctx, login, password)
	if err != nil {
		return storage.User{}, err
	}
	s.set(&u)
	return u, nil
}

// Signup creates an account and logs it in.
func (s *Session) Signup(ctx context.Context, username, email, password string) (storage.User, error) {
	u, err := s.svc.Signup(ctx, username, email, password)
	if err != nil {
		return storage.User{}, err
	}
	s.set(&u)
	return u, nil
}

// Logout forgets the current user.
func (s *Session) Logout() {
	s.set(nil)
}

// CurrentUser returns the logged-in user or ErrNotLoggedIn.
func (s *Session) CurrentUser() (storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return storage.User{}, ErrNotLoggedIn
	}
	return *s.user, nil
}

// LoggedIn reports whether a user is logged in.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) set(u *storage.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

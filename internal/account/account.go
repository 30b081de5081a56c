// Package account manages players: signup and login against the store,
// per-connection sessions, and signed tokens for the HTTP API.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/snake-arena/internal/storage"
)

var (
	ErrUserExists         = errors.New("account: user already exists")
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	ErrNotLoggedIn        = errors.New("account: not logged in")
	ErrInvalidInput       = errors.New("account: invalid input")
)

// ValidationError describes a rejected signup field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Is reports ErrInvalidInput as the error kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Store is the subset of storage the accounts need.
type Store interface {
	CreateUser(ctx context.Context, nu storage.NewUser) (storage.User, error)
	UserByID(ctx context.Context, id string) (storage.User, error)
	UserByEmail(ctx context.Context, email string) (storage.User, error)
	UserByUsername(ctx context.Context, username string) (storage.User, error)
}

// Service signs players up and verifies their credentials.
type Service struct {
	store  Store
	logger *log.Logger
	cost   int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService creates an account service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: log.New(io.Discard),
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword hashes pw with the default bcrypt cost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// Signup validates and creates a new account.
func (s *Service) Signup(ctx context.Context, username, email, password string) (storage.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateSignup(username, email, password); err != nil {
		return storage.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return storage.User{}, fmt.Errorf("account: cannot hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, storage.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, storage.ErrConflict) {
		return storage.User{}, fmt.Errorf("%w: %v", ErrUserExists, err)
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("account: cannot create user: %w", err)
	}

	s.logger.Info("user signed up", "user", u.Username, "id", u.ID)
	return u, nil
}

// Login checks credentials. login is an email address, or a username when
// it contains no '@'.
func (s *Service) Login(ctx context.Context, login, password string) (storage.User, error) {
	login = strings.TrimSpace(login)

	var (
		u   storage.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.store.UserByEmail(ctx, login)
	} else {
		u, err = s.store.UserByUsername(ctx, login)
	}
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug("login failed", "login", login, "reason", "unknown user")
		return storage.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("account: cannot look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.logger.Debug("login failed", "login", login, "reason", "wrong password")
		return storage.User{}, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", "user", u.Username)
	return u, nil
}

// UserByID returns the account for id, or ErrNotLoggedIn when it no longer exists.
func (s *Service) UserByID(ctx context.Context, id string) (storage.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.User{}, ErrNotLoggedIn
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("account: cannot look up user: %w", err)
	}
	return u, nil
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// ValidateSignup checks username, email and password rules.
func ValidateSignup(username, email, password string) error {
	if len(username) < 3 || len(username) > 24 {
		return &ValidationError{"username", "must be 3-24 characters"}
	}
	for _, r := range username {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return &ValidationError{"username", "may contain letters, numbers and underscore only"}
		}
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return &ValidationError{"email", "is not a valid address"}
	}
	if len(password) < 8 {
		return &ValidationError{"password", "must be at least 8 characters"}
	}
	if len(password) > MaxPasswordBytes {
		return &ValidationError{"password", "must be at most 72 bytes"}
	}
	return nil
}

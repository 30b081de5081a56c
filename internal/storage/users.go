package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// NewUser describes an account to create. The password is already hashed.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// CreateUser inserts a user with a fresh ID. A taken username or email
// returns an error wrapping ErrConflict.
func (s *Store) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	u := User{
		ID:           uuid.NewString(),
		Username:     nu.Username,
		Email:        strings.ToLower(nu.Email),
		PasswordHash: nu.PasswordHash,
	}
	created := s.timestamp()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, created,
	)
	if err != nil {
		if column, ok := isUniqueViolation(err); ok {
			return User{}, fmt.Errorf("storage: %s already taken: %w", column, ErrConflict)
		}
		return User{}, fmt.Errorf("storage: cannot create user: %w", err)
	}

	u.CreatedAt = parseTime(created)
	return u, nil
}

// UserByID looks up a user by ID.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.userWhere(ctx, "id = ?", id)
}

// UserByEmail looks up a user by email, case-insensitively.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.userWhere(ctx, "email = ?", strings.ToLower(email))
}

// UserByUsername looks up a user by exact username.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	return s.userWhere(ctx, "username = ?", username)
}

func (s *Store) userWhere(ctx context.Context, where string, arg any) (User, error) {
	var u User
	var createdAt any
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot query user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// CountUsers returns the number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count users: %w", err)
	}
	return n, nil
}

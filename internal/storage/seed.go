package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "password123"

var demoUsers = []string{
	"player1", "speedrunner", "snakemaster", "gamer99",
	"prosnake", "ninja", "champion", "rookie",
}

var demoScores = []struct {
	username string
	score    int
	mode     snake.Mode
}{
	{"snakemaster", 450, snake.ModeWalls},
	{"speedrunner", 380, snake.ModeWalls},
	{"player1", 320, snake.ModePassThrough},
	{"gamer99", 290, snake.ModeWalls},
	{"prosnake", 260, snake.ModePassThrough},
	{"ninja", 410, snake.ModePassThrough},
	{"champion", 505, snake.ModeWalls},
	{"rookie", 150, snake.ModeWalls},
	{"speedrunner", 340, snake.ModePassThrough},
	{"ninja", 275, snake.ModeWalls},
}

// HashFunc turns a plaintext password into a stored hash.
type HashFunc func(password string) (string, error)

// Seed fills an empty database with demo accounts (email <name>@example.com,
// password DemoPassword) and their scores. It reports false when users
// already exist and nothing was inserted.
func (s *Store) Seed(ctx context.Context, hash HashFunc) (bool, error) {
	n, err := s.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	pw, err := hash(DemoPassword)
	if err != nil {
		return false, fmt.Errorf("storage: cannot hash demo password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("storage: cannot begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	base := s.now().UTC()
	ids := make(map[string]string, len(demoUsers))
	for i, name := range demoUsers {
		id := uuid.NewString()
		ids[name] = id
		created := base.Add(time.Duration(i) * time.Microsecond).Format(timeLayout)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, name, name+"@example.com", pw, created,
		); err != nil {
			return false, fmt.Errorf("storage: cannot seed user %s: %w", name, err)
		}
	}

	for i, e := range demoScores {
		created := base.Add(time.Duration(i) * time.Microsecond).Format(timeLayout)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO leaderboard (id, user_id, username, score, mode, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), ids[e.username], e.username, e.score, string(e.mode), created,
		); err != nil {
			return false, fmt.Errorf("storage: cannot seed score for %s: %w", e.username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("storage: cannot commit seed: %w", err)
	}
	return true, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
)

// Entry is a single leaderboard record.
type Entry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	Username  string     `json:"username"`
	Score     int        `json:"score"`
	Mode      snake.Mode `json:"mode"`
	Date      string     `json:"date"`
	CreatedAt time.Time  `json:"-"`
}

// Submission is a finished game to record.
type Submission struct {
	UserID   string
	Username string
	Score    int
	Mode     snake.Mode
}

// SubmitScore records a finished game and returns the stored entry.
func (s *Store) SubmitScore(ctx context.Context, sub Submission) (Entry, error) {
	if sub.Score < 0 {
		return Entry{}, fmt.Errorf("storage: negative score %d: %w", sub.Score, ErrInvalid)
	}
	if !sub.Mode.Valid() {
		return Entry{}, fmt.Errorf("storage: unknown mode %q: %w", sub.Mode, ErrInvalid)
	}

	e := Entry{
		ID:       uuid.NewString(),
		UserID:   sub.UserID,
		Username: sub.Username,
		Score:    sub.Score,
		Mode:     sub.Mode,
	}
	created := s.timestamp()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leaderboard (id, user_id, username, score, mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Username, e.Score, string(e.Mode), created,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("storage: cannot save score: %w", err)
	}

	e.CreatedAt = parseTime(created)
	e.Date = e.CreatedAt.Format(time.DateOnly)
	return e, nil
}

// Leaderboard returns entries ordered by score descending, oldest first
// among equal scores. An empty mode means every mode; limit <= 0 means no limit.
func (s *Store) Leaderboard(ctx context.Context, mode snake.Mode, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	var (
		rows *sql.Rows
		err  error
	)
	if mode == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_id, username, score, mode, created_at
			 FROM leaderboard
			 ORDER BY score DESC, created_at ASC
			 LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_id, username, score, mode, created_at
			 FROM leaderboard
			 WHERE mode = ?
			 ORDER BY score DESC, created_at ASC
			 LIMIT ?`,
			string(mode), limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var m string
		var createdAt any
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Score, &m, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Mode = snake.Mode(m)
		e.CreatedAt = parseTime(createdAt)
		e.Date = e.CreatedAt.Format(time.DateOnly)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// BestScore returns a user's highest score in mode (any mode when empty).
// The bool is false when the user has no entries.
func (s *Store) BestScore(ctx context.Context, userID string, mode snake.Mode) (int, bool, error) {
	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(score) FROM leaderboard
		 WHERE user_id = ? AND (? = '' OR mode = ?)`,
		userID, string(mode), string(mode),
	).Scan(&score)
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query best score: %w", err)
	}

	if !score.Valid {
		return 0, false, nil
	}
	return int(score.Int64), true, nil
}

// Stats contains aggregated statistics for a mode.
type Stats struct {
	Mode       snake.Mode
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// Stats aggregates the leaderboard for mode (every mode when empty).
func (s *Store) Stats(ctx context.Context, mode snake.Mode) (Stats, error) {
	stats := Stats{Mode: mode}

	var lastPlayed any
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(score), 0), MAX(created_at)
		 FROM leaderboard WHERE (? = '' OR mode = ?)`,
		string(mode), string(mode),
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

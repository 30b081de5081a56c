package tui

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/play"
	"github.com/vovakirdan/snake-arena/internal/spectator"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

// Scores is the leaderboard as the terminal UI uses it. *storage.Store implements it.
type Scores interface {
	play.ScoreSubmitter
	Leaderboard(ctx context.Context, mode snake.Mode, limit int) ([]storage.Entry, error)
	BestScore(ctx context.Context, userID string, mode snake.Mode) (int, bool, error)
	Stats(ctx context.Context, mode snake.Mode) (storage.Stats, error)
}

// Deps are the collaborators shared by every session.
// Nil Accounts hides the account screens, nil Hub hides the spectator wall.
type Deps struct {
	Accounts *account.Service
	Scores   Scores
	Hub      *spectator.Hub
	// Pace returns the tick interval for a given score. Nil means a fixed
	// RuntimeConfig.TickInterval.
	Pace   func(score int) time.Duration
	Mode snake.Mode
	// AutoStart opens a game in Mode instead of the menu.
	AutoStart bool
	Logger    *log.Logger
}

func (d Deps) withDefaults(cfg core.RuntimeConfig) Deps {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if !d.Mode.Valid() {
		d.Mode = snake.ModeWalls
	}
	if d.Pace == nil {
		interval := cfg.TickInterval
		if interval <= 0 {
			interval = core.DefaultConfig().TickInterval
		}
		d.Pace = func(int) time.Duration { return interval }
	}
	return d
}

// Run starts a full local session (menu, games, spectator, leaderboard) and
// blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, deps Deps, cfg core.RuntimeConfig) error {
	model := NewSessionModel(ctx, deps, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// RunSpectator opens the spectator wall on its own, without the menu.
func RunSpectator(ctx context.Context, hub *spectator.Hub, cfg core.RuntimeConfig) error {
	model := NewSpectatorModel(hub, cfg.ScreenW, cfg.ScreenH)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Package play drives a single interactive game: it applies steering input,
// advances the engine once per tick and reports finished games to the
// leaderboard.
package play

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

// DefaultSubmitTimeout bounds a single score submission.
const DefaultSubmitTimeout = 5 * time.Second

// ScoreSubmitter records finished games. *storage.Store implements it.
type ScoreSubmitter interface {
	SubmitScore(ctx context.Context, sub storage.Submission) (storage.Entry, error)
}

// Player identifies who is playing. A nil *Player is an anonymous guest.
type Player struct {
	ID       string
	Username string
}

// Options configure a Driver.
type Options struct {
	Mode          snake.Mode
	Seed          int64
	Player        *Player
	Submitter     ScoreSubmitter
	SubmitTimeout time.Duration
	Logger        *log.Logger
	// OnSubmitted, if set, is called from the submitting goroutine.
	OnSubmitted func(storage.Entry, error)
}

// TickResult describes what one Tick did.
type TickResult struct {
	State    snake.GameState
	Moved    bool
	Ate      bool
	GameOver bool // true only on the tick the game ended
	// Submitted is true when a score submission was dispatched this tick.
	Submitted bool
}

// Driver owns one game session. It is not safe for concurrent use.
type Driver struct {
	state   snake.GameState
	pending snake.Direction
	rng     *rand.Rand

	player      *Player
	submitter   ScoreSubmitter
	timeout     time.Duration
	logger      *log.Logger
	onSubmitted func(storage.Entry, error)

	inflight sync.WaitGroup
}

// NewDriver creates a driver with a fresh IDLE game.
func NewDriver(opts Options) *Driver {
	mode := opts.Mode
	if !mode.Valid() {
		mode = snake.ModeWalls
	}
	timeout := opts.SubmitTimeout
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	d := &Driver{
		rng:         rand.New(rand.NewSource(opts.Seed)),
		player:      opts.Player,
		submitter:   opts.Submitter,
		timeout:     timeout,
		logger:      logger,
		onSubmitted: opts.OnSubmitted,
	}
	d.state = snake.InitialState(mode, d.rng)
	d.pending = d.state.Snake.Direction
	return d
}

// State returns a copy of the current game state.
func (d *Driver) State() snake.GameState {
	return d.state.Clone()
}

// Mode returns the current boundary mode.
func (d *Driver) Mode() snake.Mode {
	return d.state.Mode
}

// Player returns the current player, or nil for a guest.
func (d *Driver) Player() *Player {
	return d.player
}

// SetPlayer changes who future scores are credited to.
func (d *Driver) SetPlayer(p *Player) {
	d.player = p
}

// Start begins an IDLE game.
func (d *Driver) Start() {
	d.state = snake.Start(d.state)
}

// TogglePause starts an IDLE game, otherwise flips PLAYING and PAUSED.
func (d *Driver) TogglePause() {
	if d.state.Status == snake.StatusIdle {
		d.Start()
		return
	}
	d.state = snake.TogglePause(d.state)
}

// Reset replaces a paused, idle or finished game with a fresh one in the same mode.
func (d *Driver) Reset() bool {
	if !snake.CanReset(d.state) {
		return false
	}
	d.state = snake.Reset(d.state, d.state.Mode, d.rng)
	d.pending = d.state.Snake.Direction
	return true
}

// SetMode switches the boundary mode, starting a fresh IDLE game.
// It refuses while a game is running.
func (d *Driver) SetMode(mode snake.Mode) bool {
	if !mode.Valid() || !snake.CanReset(d.state) {
		return false
	}
	d.state = snake.Reset(d.state, mode, d.rng)
	d.pending = d.state.Snake.Direction
	return true
}

// Steer records a direction request for the next tick. Requests are checked
// against the direction the snake last moved in, so two quick turns cannot
// reverse it.
func (d *Driver) Steer(dir snake.Direction) {
	if d.state.Status != snake.StatusPlaying && d.state.Status != snake.StatusIdle {
		return
	}
	if snake.ChangeDirection(d.state.Snake.Direction, dir) != dir {
		return
	}
	d.pending = dir
}

// Tick advances the game one step. On the tick the game ends the score is
// submitted in the background; ctx only bounds how the submission starts.
func (d *Driver) Tick(ctx context.Context) TickResult {
	prev := d.state
	d.state = snake.Step(prev, d.pending, d.rng)

	res := TickResult{State: d.state.Clone()}
	if prev.Status != snake.StatusPlaying {
		return res
	}

	res.Moved = d.state.Status == snake.StatusPlaying
	res.Ate = d.state.Score > prev.Score
	if d.state.Status == snake.StatusGameOver {
		res.GameOver = true
		res.Submitted = d.submit(ctx, d.state)
	}
	return res
}

func (d *Driver) submit(ctx context.Context, final snake.GameState) bool {
	if d.player == nil {
		d.logger.Warn("score not submitted", "reason", "not logged in", "score", final.Score, "mode", final.Mode)
		return false
	}
	if d.submitter == nil {
		d.logger.Debug("score not submitted", "reason", "no leaderboard", "score", final.Score)
		return false
	}

	sub := storage.Submission{
		UserID:   d.player.ID,
		Username: d.player.Username,
		Score:    final.Score,
		Mode:     final.Mode,
	}
	base := context.WithoutCancel(ctx)

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		sctx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		entry, err := d.submitter.SubmitScore(sctx, sub)
		if err != nil {
			d.logger.Error("score submission failed", "user", sub.Username, "score", sub.Score, "mode", sub.Mode, "err", err)
		} else {
			d.logger.Info("score submitted", "user", sub.Username, "score", sub.Score, "mode", sub.Mode, "id", entry.ID)
		}
		if d.onSubmitted != nil {
			d.onSubmitted(entry, err)
		}
	}()
	return true
}

// Wait blocks until in-flight submissions finish.
func (d *Driver) Wait() {
	d.inflight.Wait()
}

package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/play"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

const (
	hudRows    = 2 // title + score line above the board
	footerRows = 3 // blank, status, controls
)

// loopIDs numbers tick loops so a model ignores ticks from an earlier game.
var loopIDs atomic.Int64

// submitResultMsg reports a finished background score submission.
type submitResultMsg struct {
	entry storage.Entry
	err   error
}

// GameModel runs one interactive game through a play.Driver.
type GameModel struct {
	ctx        context.Context
	driver     *play.Driver
	screen     *core.Screen
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	pace       func(score int) time.Duration
	bests      map[snake.Mode]int // personal bests, empty for guests
	status     string
	results    chan submitResultMsg
	seq        int
	quitting   bool
	backToMenu bool
}

// GameOptions configure a GameModel.
type GameOptions struct {
	Mode      snake.Mode
	Seed      int64
	Player    *play.Player // nil plays as guest
	Submitter play.ScoreSubmitter
	Pace      func(score int) time.Duration
	Bests     map[snake.Mode]int
	Width     int
	Height    int
	Logger    *log.Logger
}

// NewGameModel creates an IDLE game with its own driver.
func NewGameModel(ctx context.Context, opts GameOptions) GameModel {
	results := make(chan submitResultMsg, 4)
	driver := play.NewDriver(play.Options{
		Mode:      opts.Mode,
		Seed:      opts.Seed,
		Player:    opts.Player,
		Submitter: opts.Submitter,
		Logger:    opts.Logger,
		OnSubmitted: func(e storage.Entry, err error) {
			select {
			case results <- submitResultMsg{entry: e, err: err}:
			default:
			}
		},
	})

	bests := make(map[snake.Mode]int, len(snake.Modes))
	for mode, score := range opts.Bests {
		bests[mode] = score
	}

	pace := opts.Pace
	if pace == nil {
		interval := core.DefaultConfig().TickInterval
		pace = func(int) time.Duration { return interval }
	}

	return GameModel{
		ctx:        ctx,
		driver:     driver,
		screen:     core.NewScreen(max(opts.Width, snake.BoardWidth), max(opts.Height, snake.BoardHeight+hudRows+footerRows)),
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		pace:       pace,
		bests:      bests,
		results:    results,
		seq:        int(loopIDs.Add(1)),
	}
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.pace(0), m.seq)
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(max(msg.Width, snake.BoardWidth), max(msg.Height, snake.BoardHeight+hudRows+footerRows))
		return m, nil

	case TickMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		return m.handleTick()

	case submitResultMsg:
		if msg.err != nil {
			m.status = "Could not save score"
		} else {
			m.status = fmt.Sprintf("Score %d saved to the leaderboard", msg.entry.Score)
			m.bests[msg.entry.Mode] = max(m.bests[msg.entry.Mode], msg.entry.Score)
		}
		return m, nil
	}
	return m, nil
}

// handleKey queues actions for the next tick; quit and back act immediately.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.inputFrame.Has(core.ActionBack) {
		m.inputFrame.Clear()
		if m.driver.State().Status == snake.StatusPlaying {
			m.driver.TogglePause()
		}
		m.backToMenu = true
		return m, nil
	}
	return m, nil
}

// handleTick applies queued input, then advances the game.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	if dir, ok := DirectionFor(m.inputFrame.Move); ok {
		m.driver.Steer(dir)
	}
	if m.inputFrame.Has(core.ActionPause) {
		m.driver.TogglePause()
		m.status = ""
	}
	if m.inputFrame.Has(core.ActionRestart) && m.driver.Reset() {
		m.status = ""
	}
	if m.inputFrame.Has(core.ActionToggleMode) {
		m.driver.SetMode(m.driver.Mode().Toggle())
	}
	m.inputFrame.Clear()

	res := m.driver.Tick(m.ctx)
	if res.GameOver {
		switch {
		case res.Submitted:
			m.status = "Saving score..."
		case m.driver.Player() == nil:
			m.status = "Log in to save your score"
		}
	}

	cmds := []tea.Cmd{tickCmd(m.pace(res.State.Score), m.seq)}
	if res.Submitted {
		cmds = append(cmds, m.awaitSubmission())
	}
	return m, tea.Batch(cmds...)
}

func (m GameModel) awaitSubmission() tea.Cmd {
	results := m.results
	if results == nil {
		return nil
	}
	return func() tea.Msg {
		return <-results
	}
}

// View renders the game.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	state := m.driver.State()
	m.screen.Clear()

	originX := (m.screen.Width() - snake.BoardWidth) / 2
	originY := hudRows

	title := "SNAKE  " + state.Mode.Title()
	m.screen.DrawTextColored(originX, 0, title, core.ColorBrightCyan)

	who := "guest"
	if p := m.driver.Player(); p != nil {
		who = p.Username
	}
	best := m.bests[state.Mode]
	if m.driver.Player() != nil {
		best = max(best, state.Score)
	}
	hud := fmt.Sprintf("Score: %d   Best: %d   Player: %s", state.Score, best, who)
	m.screen.DrawTextColored(originX, 1, hud, core.ColorWhite)

	snake.Render(state, m.screen, originX, originY)

	footer := originY + snake.BoardHeight + 1
	if m.status != "" {
		m.screen.DrawTextColored(originX, footer, m.status, core.ColorBrightYellow)
	}
	m.screen.DrawTextColored(originX, footer+1, controlsFor(state.Status), core.ColorGray)

	return RenderScreen(m.screen)
}

func controlsFor(status snake.Status) string {
	switch status {
	case snake.StatusPlaying:
		return "Arrows/WASD: Steer  Space: Pause  Esc: Menu  Q: Quit"
	case snake.StatusPaused:
		return "Space: Resume  R: Reset  Esc: Menu  Q: Quit"
	case snake.StatusGameOver:
		return "R: New game  M: Mode  Esc: Menu  Q: Quit"
	}
	return "Space: Start  M: Mode  Esc: Menu  Q: Quit"
}

// State returns the current game state.
func (m GameModel) State() snake.GameState {
	return m.driver.State()
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/spectator"
)

const (
	boardGap    = 2
	labelRows   = 1
	wallHeaders = 2
)

// SpectatorModel shows every live bot game side by side.
// Frames arrive from a hub subscription; if the hub closes it the model
// falls back to polling Active on the hub's cadence.
type SpectatorModel struct {
	hub        *spectator.Hub
	sub        *spectator.Subscription
	frame      spectator.Frame
	screen     *core.Screen
	keyMapper  *KeyMapper
	width      int
	height     int
	polling    bool
	seq        int
	standalone bool // Esc quits instead of returning to a menu
	back       bool
	quitting   bool
}

// NewSpectatorModel subscribes to hub.
func NewSpectatorModel(hub *spectator.Hub, width, height int) SpectatorModel {
	m := SpectatorModel{
		hub:       hub,
		sub:       hub.Subscribe(0),
		keyMapper: NewKeyMapper(),
		width:     width,
		height:    height,
		seq:       int(loopIDs.Add(1)),
	}
	m.frame = spectator.Frame{Tick: hub.Ticks(), Players: hub.Active()}
	m.screen = core.NewScreen(m.wallSize())
	return m
}

// Init waits for the first frame.
func (m SpectatorModel) Init() tea.Cmd {
	return waitForFrame(m.sub)
}

// Update handles frames and keys.
func (m SpectatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.Tick < m.frame.Tick {
			return m, waitForFrame(m.sub)
		}
		m.frame = spectator.Frame(msg)
		m.screen.Resize(m.wallSize())
		return m, waitForFrame(m.sub)

	case feedClosedMsg:
		if m.back || m.quitting {
			return m, nil
		}
		m.polling = true
		return m, tickCmd(m.hub.Interval(), m.seq)

	case TickMsg:
		if !m.polling || msg.Seq != m.seq {
			return m, nil
		}
		m.frame = spectator.Frame{Tick: m.hub.Ticks(), Players: m.hub.Active()}
		m.screen.Resize(m.wallSize())
		return m, tickCmd(m.hub.Interval(), m.seq)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(m.wallSize())
		return m, nil

	case tea.KeyMsg:
		switch m.keyMapper.MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			m.leave()
			m.quitting = true
			return m, tea.Quit
		case MenuActionBack:
			m.leave()
			m.back = true
			if m.standalone {
				m.quitting = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *SpectatorModel) leave() {
	_ = m.hub.Unsubscribe(m.sub.ID())
}

func (m SpectatorModel) columns() int {
	return max(1, (m.width+boardGap)/(snake.BoardWidth+boardGap))
}

func (m SpectatorModel) wallSize() (int, int) {
	cols := m.columns()
	rows := (len(m.frame.Players) + cols - 1) / cols
	w := max(m.width, cols*(snake.BoardWidth+boardGap))
	h := max(m.height, wallHeaders+rows*(labelRows+snake.BoardHeight+1)+1)
	return w, h
}

// View renders the wall of boards.
func (m SpectatorModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	header := fmt.Sprintf("LIVE GAMES   %d playing   tick %d", len(m.frame.Players), m.frame.Tick)
	m.screen.DrawTextColored(0, 0, header, core.ColorBrightCyan)

	cols := m.columns()
	for i, p := range m.frame.Players {
		x := (i % cols) * (snake.BoardWidth + boardGap)
		y := wallHeaders + (i/cols)*(labelRows+snake.BoardHeight+1)

		label := fmt.Sprintf("%s  %s  %d", p.Username, p.Mode.Title(), p.Score)
		m.screen.DrawTextColored(x, y, label, core.ColorBrightWhite)
		if p.BestScore > 0 {
			best := fmt.Sprintf("best %d", p.BestScore)
			m.screen.DrawTextColored(x+snake.BoardWidth-len(best), y, best, core.ColorGray)
		}
		snake.Render(p.GameState, m.screen, x, y+labelRows)
	}

	if len(m.frame.Players) == 0 {
		m.screen.DrawTextCentered(wallHeaders+1, "No live games right now.", core.ColorGray)
	}

	footer := "Esc: Back  |  Q: Quit"
	if m.standalone {
		footer = "Esc/Q: Quit"
	}
	if m.polling {
		footer += "  |  live feed closed, polling"
	}
	m.screen.DrawTextColored(0, m.screen.Height()-1, footer, core.ColorGray)

	return RenderScreen(m.screen)
}

// WantsBack returns true if the viewer left the wall.
func (m SpectatorModel) WantsBack() bool {
	return m.back
}

// IsQuitting returns true if user requested to quit.
func (m SpectatorModel) IsQuitting() bool {
	return m.quitting
}

// Frame returns the frame currently displayed.
func (m SpectatorModel) Frame() spectator.Frame {
	return m.frame
}

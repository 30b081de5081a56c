package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/play"
)

type screenID int

const (
	screenMenu screenID = iota
	screenAuth
	screenGame
	screenSpectator
	screenLeaderboard
)

// SessionModel manages the full arena session flow: menu -> screen -> menu.
// It is the top-level model for both local and SSH sessions, and owns the
// session's login state.
type SessionModel struct {
	ctx     context.Context
	deps    Deps
	config  core.RuntimeConfig
	account *account.Session // nil when accounts are disabled

	screen      screenID
	menu        MenuModel
	auth        AuthModel
	game        GameModel
	spectator   SpectatorModel
	leaderboard LeaderboardModel
	quitting    bool
}

// NewSessionModel creates a logged-out session showing the menu.
func NewSessionModel(ctx context.Context, deps Deps, cfg core.RuntimeConfig) SessionModel {
	deps = deps.withDefaults(cfg)
	m := SessionModel{
		ctx:    ctx,
		deps:   deps,
		config: cfg,
	}
	if deps.Accounts != nil {
		m.account = account.NewSession(deps.Accounts)
	}
	m.menu = m.newMenu("")
	if deps.AutoStart {
		started, _ := m.startGame(deps.Mode)
		m = started.(SessionModel)
	}
	return m
}

func (m SessionModel) newMenu(notice string) MenuModel {
	return NewMenuModel(m.config.ScreenW, m.config.ScreenH, m.username(), MenuFeatures{
		Accounts:  m.account != nil,
		Spectator: m.deps.Hub != nil,
	}).WithNotice(notice)
}

// player returns the logged-in player, or nil for a guest.
func (m SessionModel) player() *play.Player {
	if m.account == nil {
		return nil
	}
	u, err := m.account.CurrentUser()
	if err != nil {
		return nil
	}
	return &play.Player{ID: u.ID, Username: u.Username}
}

func (m SessionModel) username() string {
	if p := m.player(); p != nil {
		return p.Username
	}
	return ""
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.screen == screenGame {
		return m.game.Init()
	}
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenAuth:
		return m.updateAuth(msg)
	case screenGame:
		return m.updateGame(msg)
	case screenSpectator:
		return m.updateSpectator(msg)
	case screenLeaderboard:
		return m.updateLeaderboard(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) toMenu(notice string) (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = m.newMenu(notice)
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	switch selected.Choice {
	case ChoicePlayWalls:
		return m.startGame(snake.ModeWalls)
	case ChoicePlayPassThrough:
		return m.startGame(snake.ModePassThrough)

	case ChoiceWatch:
		m.screen = screenSpectator
		m.spectator = NewSpectatorModel(m.deps.Hub, m.config.ScreenW, m.config.ScreenH)
		return m, m.spectator.Init()

	case ChoiceLeaderboard:
		userID := ""
		if p := m.player(); p != nil {
			userID = p.ID
		}
		m.screen = screenLeaderboard
		m.leaderboard = NewLeaderboardModel(m.ctx, m.deps.Scores, userID, m.config.ScreenW, m.config.ScreenH)
		return m, m.leaderboard.Init()

	case ChoiceLogin, ChoiceSignup:
		kind := AuthLogin
		if selected.Choice == ChoiceSignup {
			kind = AuthSignup
		}
		m.screen = screenAuth
		m.auth = NewAuthModel(m.ctx, kind, m.account, m.config.ScreenW, m.config.ScreenH)
		return m, m.auth.Init()

	case ChoiceLogout:
		name := m.username()
		m.account.Logout()
		m.deps.Logger.Info("user logged out", "user", name)
		return m.toMenu("Logged out")
	}
	return m, cmd
}

func (m SessionModel) startGame(mode snake.Mode) (tea.Model, tea.Cmd) {
	player := m.player()

	var bests map[snake.Mode]int
	if player != nil && m.deps.Scores != nil {
		bests = make(map[snake.Mode]int, len(snake.Modes))
		for _, md := range snake.Modes {
			if best, ok, err := m.deps.Scores.BestScore(m.ctx, player.ID, md); err == nil && ok {
				bests[md] = best
			}
		}
	}

	m.screen = screenGame
	m.game = NewGameModel(m.ctx, GameOptions{
		Mode:      mode,
		Seed:      m.config.SeedOrNow(),
		Player:    player,
		Submitter: m.deps.Scores,
		Pace:      m.deps.Pace,
		Bests:     bests,
		Width:     m.config.ScreenW,
		Height:    m.config.ScreenH,
		Logger:    m.deps.Logger,
	})
	return m, m.game.Init()
}

func (m SessionModel) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.auth.Update(msg)
	if authModel, ok := newModel.(AuthModel); ok {
		m.auth = authModel
	}

	switch {
	case m.auth.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.auth.WantsBack():
		return m.toMenu("")
	case m.auth.User() != nil:
		return m.toMenu("Welcome, " + m.auth.User().Username)
	}
	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = gameModel
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m.toMenu("")
	}
	return m, cmd
}

func (m SessionModel) updateSpectator(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.spectator.Update(msg)
	if specModel, ok := newModel.(SpectatorModel); ok {
		m.spectator = specModel
	}

	if m.spectator.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.spectator.WantsBack() {
		return m.toMenu("")
	}
	return m, cmd
}

func (m SessionModel) updateLeaderboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.leaderboard.Update(msg)
	if boardModel, ok := newModel.(LeaderboardModel); ok {
		m.leaderboard = boardModel
	}

	if m.leaderboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.leaderboard.WantsBack() {
		return m.toMenu("")
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenAuth:
		return m.auth.View()
	case screenGame:
		return m.game.View()
	case screenSpectator:
		return m.spectator.View()
	case screenLeaderboard:
		return m.leaderboard.View()
	}
	return m.menu.View()
}

// LoggedIn reports whether the session has a logged-in user.
func (m SessionModel) LoggedIn() bool {
	return m.player() != nil
}

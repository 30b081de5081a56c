package tui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/play"
	"github.com/vovakirdan/snake-arena/internal/spectator"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
)

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		key    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{runes("w"), core.ActionUp, false},
		{runes("s"), core.ActionDown, false},
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{runes("a"), core.ActionLeft, false},
		{runes("d"), core.ActionRight, false},
		{keySpace, core.ActionPause, false},
		{runes("p"), core.ActionPause, false},
		{runes("r"), core.ActionRestart, false},
		{runes("m"), core.ActionToggleMode, false},
		{keyEnter, core.ActionConfirm, false},
		{keyEsc, core.ActionBack, false},
		{runes("q"), core.ActionQuit, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{runes("x"), core.ActionNone, false},
	}
	for _, tc := range tests {
		t.Run(tc.key.String(), func(t *testing.T) {
			action, quit := km.MapKey(tc.key)
			if action != tc.action || quit != tc.quit {
				t.Errorf("MapKey(%q) = %v, %v; expected %v, %v", tc.key.String(), action, quit, tc.action, tc.quit)
			}
		})
	}
}

func TestDirectionFor(t *testing.T) {
	tests := map[core.Action]snake.Direction{
		core.ActionUp:    snake.Up,
		core.ActionDown:  snake.Down,
		core.ActionLeft:  snake.Left,
		core.ActionRight: snake.Right,
	}
	for action, want := range tests {
		got, ok := DirectionFor(action)
		if !ok || got != want {
			t.Errorf("DirectionFor(%v) = %v, %v; expected %v", action, got, ok, want)
		}
	}
	if _, ok := DirectionFor(core.ActionPause); ok {
		t.Error("DirectionFor(Pause) should not map to a direction")
	}
}

func TestMapKeyToFrameKeepsLatestMove(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()
	km.MapKeyToFrame(runes("w"), &frame)
	km.MapKeyToFrame(runes("a"), &frame)
	if frame.Move != core.ActionLeft {
		t.Errorf("Move = %v, expected Left", frame.Move)
	}
	if km.MapKeyToFrame(runes("q"), &frame) != true {
		t.Error("q should report quit")
	}
	if frame.Has(core.ActionQuit) {
		t.Error("quit should not be queued in the frame")
	}
}

func TestMenuItemsFollowLoginState(t *testing.T) {
	choices := func(m MenuModel) []MenuChoice {
		var out []MenuChoice
		for _, it := range m.Items() {
			out = append(out, it.Choice)
		}
		return out
	}
	has := func(cs []MenuChoice, c MenuChoice) bool {
		for _, x := range cs {
			if x == c {
				return true
			}
		}
		return false
	}

	guest := choices(NewMenuModel(80, 24, "", MenuFeatures{Accounts: true, Spectator: true}))
	if !has(guest, ChoiceLogin) || !has(guest, ChoiceSignup) || has(guest, ChoiceLogout) {
		t.Errorf("guest menu = %v", guest)
	}
	if !has(guest, ChoiceWatch) {
		t.Error("spectator entry missing")
	}

	member := choices(NewMenuModel(80, 24, "ada", MenuFeatures{Accounts: true}))
	if has(member, ChoiceLogin) || !has(member, ChoiceLogout) || has(member, ChoiceWatch) {
		t.Errorf("member menu = %v", member)
	}

	bare := choices(NewMenuModel(80, 24, "", MenuFeatures{}))
	if has(bare, ChoiceLogin) || has(bare, ChoiceLogout) {
		t.Errorf("accounts disabled menu = %v", bare)
	}
}

func TestMenuSelectAndWrap(t *testing.T) {
	m := NewMenuModel(80, 24, "", MenuFeatures{})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(MenuModel)
	next, _ = m.Update(keyEnter)
	m = next.(MenuModel)
	if m.IsQuitting() != true {
		t.Error("wrapping up to Quit and selecting it should quit")
	}

	m = NewMenuModel(80, 24, "", MenuFeatures{})
	next, _ = m.Update(keyDown)
	m = next.(MenuModel)
	next, _ = m.Update(keyEnter)
	m = next.(MenuModel)
	if sel := m.Selected(); sel == nil || sel.Choice != ChoicePlayPassThrough {
		t.Errorf("Selected() = %+v, expected pass-through", sel)
	}
}

type recordingSubmitter struct {
	mu   sync.Mutex
	subs []storage.Submission
}

func (r *recordingSubmitter) SubmitScore(_ context.Context, sub storage.Submission) (storage.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
	return storage.Entry{ID: "e1", Username: sub.Username, Score: sub.Score, Mode: sub.Mode}, nil
}

func updateGame(t *testing.T, m GameModel, msg tea.Msg) GameModel {
	t.Helper()
	next, _ := m.Update(msg)
	gm, ok := next.(GameModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return gm
}

func runUntilOver(t *testing.T, m GameModel) GameModel {
	t.Helper()
	for i := 0; i < 4*snake.GridSize && m.State().Status != snake.StatusGameOver; i++ {
		m = updateGame(t, m, TickMsg{Seq: m.seq})
	}
	if m.State().Status != snake.StatusGameOver {
		t.Fatal("game never ended")
	}
	return m
}

func TestGameModelStartsAndIgnoresStaleTicks(t *testing.T) {
	m := NewGameModel(context.Background(), GameOptions{Mode: snake.ModeWalls, Seed: 1, Width: 80, Height: 30})
	if m.State().Status != snake.StatusIdle {
		t.Fatalf("status = %s, expected idle", m.State().Status)
	}

	m = updateGame(t, m, keySpace)
	m = updateGame(t, m, TickMsg{Seq: m.seq + 1000})
	if m.State().Status != snake.StatusIdle {
		t.Error("a tick from another loop should be ignored")
	}

	m = updateGame(t, m, TickMsg{Seq: m.seq})
	if m.State().Status != snake.StatusPlaying {
		t.Fatalf("status = %s, expected playing", m.State().Status)
	}
	if head := m.State().Head(); head != (snake.Position{X: 11, Y: 10}) {
		t.Errorf("head = %v, expected (11,10) after one step", head)
	}
}

func TestGameModelSteering(t *testing.T) {
	m := NewGameModel(context.Background(), GameOptions{Mode: snake.ModePassThrough, Seed: 1})
	m = updateGame(t, m, keySpace)
	m = updateGame(t, m, TickMsg{Seq: m.seq})

	m = updateGame(t, m, runes("s"))
	m = updateGame(t, m, TickMsg{Seq: m.seq})
	if got := m.State().Snake.Direction; got != snake.Down {
		t.Errorf("direction = %v, expected DOWN", got)
	}

	m = updateGame(t, m, runes("w"))
	m = updateGame(t, m, TickMsg{Seq: m.seq})
	if got := m.State().Snake.Direction; got != snake.Down {
		t.Errorf("reversal was applied: direction = %v", got)
	}
}

func TestGameModelToggleModeOnlyBeforeStart(t *testing.T) {
	m := NewGameModel(context.Background(), GameOptions{Mode: snake.ModeWalls, Seed: 1})
	m = updateGame(t, m, runes("m"))
	m = updateGame(t, m, TickMsg{Seq: m.seq})
	if m.State().Mode != snake.ModePassThrough {
		t.Fatalf("mode = %s, expected pass-through", m.State().Mode)
	}

	m = updateGame(t, m, keySpace)
	m = updateGame(t, m, TickMsg{Seq: m.seq})
	m = updateGame(t, m, runes("m"))
	m = updateGame(t, m, TickMsg{Seq: m.seq})
	if m.State().Mode != snake.ModePassThrough {
		t.Error("mode changed while playing")
	}
}

func TestGameModelGuestGameOver(t *testing.T) {
	sub := &recordingSubmitter{}
	m := NewGameModel(context.Background(), GameOptions{Mode: snake.ModeWalls, Seed: 1, Submitter: sub})
	m = updateGame(t, m, keySpace)
	m = runUntilOver(t, m)

	if m.status != "Log in to save your score" {
		t.Errorf("status = %q", m.status)
	}
	m.driver.Wait()
	if len(sub.subs) != 0 {
		t.Errorf("guest score was submitted: %+v", sub.subs)
	}
	if !strings.Contains(m.View(), "Game Over") {
		t.Error("view should show the game over banner")
	}
}

func TestGameModelSubmitsForPlayer(t *testing.T) {
	sub := &recordingSubmitter{}
	m := NewGameModel(context.Background(), GameOptions{
		Mode:      snake.ModeWalls,
		Seed:      1,
		Player:    &play.Player{ID: "u1", Username: "ada"},
		Submitter: sub,
		Bests:     map[snake.Mode]int{snake.ModeWalls: 5},
	})
	m = updateGame(t, m, keySpace)
	m = runUntilOver(t, m)

	if m.status != "Saving score..." {
		t.Errorf("status = %q", m.status)
	}
	m.driver.Wait()
	if len(sub.subs) != 1 || sub.subs[0].UserID != "u1" {
		t.Fatalf("submissions = %+v", sub.subs)
	}

	res := <-m.results
	m = updateGame(t, m, res)
	if !strings.HasPrefix(m.status, "Score ") {
		t.Errorf("status = %q, expected a saved message", m.status)
	}
	if !strings.Contains(m.View(), "Player: ada") {
		t.Error("HUD should name the player")
	}
}

func TestGameModelBackPausesGame(t *testing.T) {
	m := NewGameModel(context.Background(), GameOptions{Mode: snake.ModeWalls, Seed: 1})
	m = updateGame(t, m, keySpace)
	m = updateGame(t, m, TickMsg{Seq: m.seq})
	m = updateGame(t, m, keyEsc)
	if !m.BackToMenu() {
		t.Error("Esc should go back to the menu")
	}
	if m.State().Status != snake.StatusPaused {
		t.Errorf("status = %s, expected paused", m.State().Status)
	}
}

type fakeScores struct {
	recordingSubmitter
	entries []storage.Entry
	modes   []snake.Mode
}

func (f *fakeScores) Leaderboard(_ context.Context, mode snake.Mode, _ int) ([]storage.Entry, error) {
	f.modes = append(f.modes, mode)
	var out []storage.Entry
	for _, e := range f.entries {
		if mode == "" || e.Mode == mode {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeScores) BestScore(_ context.Context, userID string, mode snake.Mode) (int, bool, error) {
	best, ok := 0, false
	for _, e := range f.entries {
		if e.UserID == userID && (mode == "" || e.Mode == mode) {
			best, ok = max(best, e.Score), true
		}
	}
	return best, ok, nil
}

func (f *fakeScores) Stats(_ context.Context, mode snake.Mode) (storage.Stats, error) {
	return storage.Stats{Mode: mode}, nil
}

func TestLeaderboardTabs(t *testing.T) {
	scores := &fakeScores{entries: []storage.Entry{
		{ID: "1", UserID: "u1", Username: "ada", Score: 40, Mode: snake.ModeWalls, Date: "2024-01-15"},
		{ID: "2", UserID: "u2", Username: "bob", Score: 30, Mode: snake.ModePassThrough, Date: "2024-01-15"},
	}}

	m := NewLeaderboardModel(context.Background(), scores, "u1", 100, 40)
	if len(m.Entries()) != 2 {
		t.Fatalf("All tab entries = %d", len(m.Entries()))
	}
	if !strings.Contains(m.View(), "your best 40") {
		t.Error("personal best missing from view")
	}

	next, _ := m.Update(keyTab)
	m = next.(LeaderboardModel)
	if len(m.Entries()) != 1 || m.Entries()[0].Mode != snake.ModeWalls {
		t.Errorf("Walls tab = %+v", m.Entries())
	}

	next, _ = m.Update(keyTab)
	m = next.(LeaderboardModel)
	if !strings.Contains(m.View(), "no scores of yours yet") {
		t.Error("expected no personal best on the pass-through tab")
	}

	want := []snake.Mode{"", snake.ModeWalls, snake.ModePassThrough}
	if len(scores.modes) != len(want) {
		t.Fatalf("queried modes = %v", scores.modes)
	}
	for i := range want {
		if scores.modes[i] != want[i] {
			t.Errorf("query %d mode = %q, expected %q", i, scores.modes[i], want[i])
		}
	}

	next, _ = m.Update(keyEsc)
	if !next.(LeaderboardModel).WantsBack() {
		t.Error("Esc should go back")
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	m := NewLeaderboardModel(context.Background(), &fakeScores{}, "", 100, 40)
	view := m.View()
	if !strings.Contains(view, "No scores recorded yet.") {
		t.Error("empty message missing")
	}
	if !strings.Contains(view, "log in to track your best") {
		t.Error("guest hint missing")
	}
}

func TestSpectatorModelFollowsHub(t *testing.T) {
	hub := spectator.NewHub(spectator.DefaultConfig(), nil, nil, 1)
	m := NewSpectatorModel(hub, 100, 60)
	if hub.Viewers() != 1 {
		t.Fatalf("viewers = %d, expected 1", hub.Viewers())
	}

	msg := m.Init()()
	next, cmd := m.Update(msg)
	m = next.(SpectatorModel)
	if cmd == nil {
		t.Fatal("expected a follow-up wait command")
	}

	hub.Tick()
	next, _ = m.Update(cmd())
	m = next.(SpectatorModel)
	if m.Frame().Tick != 1 {
		t.Errorf("frame tick = %d, expected 1", m.Frame().Tick)
	}

	view := m.View()
	for _, name := range []string{"speedrunner", "snakemaster"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing %s", name)
		}
	}

	next, _ = m.Update(keyEsc)
	m = next.(SpectatorModel)
	if !m.WantsBack() {
		t.Error("Esc should leave the wall")
	}
	if hub.Viewers() != 0 {
		t.Errorf("viewers = %d after leaving", hub.Viewers())
	}
}

func TestSpectatorModelFallsBackToPolling(t *testing.T) {
	hub := spectator.NewHub(spectator.DefaultConfig(), nil, nil, 1)
	m := NewSpectatorModel(hub, 100, 60)

	next, cmd := m.Update(feedClosedMsg{})
	m = next.(SpectatorModel)
	if !m.polling || cmd == nil {
		t.Fatal("expected polling with a tick command")
	}

	hub.Tick()
	hub.Tick()
	next, _ = m.Update(TickMsg{Seq: m.seq})
	m = next.(SpectatorModel)
	if m.Frame().Tick != 2 {
		t.Errorf("polled tick = %d, expected 2", m.Frame().Tick)
	}
}

func newTestSession(t *testing.T) (SessionModel, *account.Service) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := account.NewService(store, account.WithCost(bcrypt.MinCost))
	m := NewSessionModel(context.Background(), Deps{
		Accounts: svc,
		Scores:   store,
		Hub:      spectator.NewHub(spectator.DefaultConfig(), nil, nil, 1),
	}, core.RuntimeConfig{ScreenW: 100, ScreenH: 40, Seed: 1})
	return m, svc
}

func updateSession(t *testing.T, m SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return sm, cmd
}

func selectChoice(t *testing.T, m SessionModel, choice MenuChoice) (SessionModel, tea.Cmd) {
	t.Helper()
	idx := -1
	for i, it := range m.menu.Items() {
		if it.Choice == choice {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("menu has no choice %v", choice)
	}
	for range idx {
		m, _ = updateSession(t, m, keyDown)
	}
	return updateSession(t, m, keyEnter)
}

func TestSessionLoginFlow(t *testing.T) {
	m, svc := newTestSession(t)
	if _, err := svc.Signup(context.Background(), "ada", "ada@example.com", "password123"); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	m, _ = selectChoice(t, m, ChoiceLogin)
	if m.screen != screenAuth {
		t.Fatalf("screen = %v, expected auth", m.screen)
	}

	m, _ = updateSession(t, m, runes("ada@example.com"))
	m, _ = updateSession(t, m, keyEnter)
	m, _ = updateSession(t, m, runes("password123"))
	m, cmd := updateSession(t, m, keyEnter)
	if cmd == nil {
		t.Fatal("expected a submit command")
	}

	m, _ = updateSession(t, m, cmd())
	if m.screen != screenMenu {
		t.Fatalf("screen = %v, expected menu after login", m.screen)
	}
	if !m.LoggedIn() {
		t.Fatal("session should be logged in")
	}
	if !strings.Contains(m.View(), "Logged in as ada") {
		t.Error("menu should show the user")
	}

	m, _ = selectChoice(t, m, ChoicePlayWalls)
	if m.screen != screenGame {
		t.Fatalf("screen = %v, expected game", m.screen)
	}
	if p := m.game.driver.Player(); p == nil || p.Username != "ada" {
		t.Errorf("driver player = %+v", p)
	}

	m, _ = updateSession(t, m, keyEsc)
	m, _ = selectChoice(t, m, ChoiceLogout)
	if m.LoggedIn() {
		t.Error("still logged in after logout")
	}
}

func TestSessionLoginFailureStaysOnForm(t *testing.T) {
	m, _ := newTestSession(t)
	m, _ = selectChoice(t, m, ChoiceLogin)
	m, _ = updateSession(t, m, runes("nobody@example.com"))
	m, _ = updateSession(t, m, keyEnter)
	m, _ = updateSession(t, m, runes("password123"))
	m, cmd := updateSession(t, m, keyEnter)
	m, _ = updateSession(t, m, cmd())

	if m.screen != screenAuth {
		t.Fatalf("screen = %v, expected to stay on the form", m.screen)
	}
	if !strings.Contains(m.View(), "Invalid credentials") {
		t.Error("expected an inline error")
	}

	m, _ = updateSession(t, m, keyEsc)
	if m.screen != screenMenu {
		t.Error("Esc should return to the menu")
	}
}

func TestSessionAutoStart(t *testing.T) {
	m := NewSessionModel(context.Background(), Deps{Mode: snake.ModePassThrough, AutoStart: true}, core.RuntimeConfig{Seed: 1})
	if m.screen != screenGame {
		t.Fatalf("screen = %v, expected game", m.screen)
	}
	if m.game.State().Mode != snake.ModePassThrough {
		t.Errorf("mode = %s", m.game.State().Mode)
	}
	if m.Init() == nil {
		t.Error("Init should start the tick loop")
	}
}

func TestColorStylesCoverPalette(t *testing.T) {
	palette := []core.Color{
		core.ColorRed, core.ColorGreen, core.ColorYellow, core.ColorBlue,
		core.ColorMagenta, core.ColorCyan, core.ColorWhite,
		core.ColorBrightRed, core.ColorBrightGreen, core.ColorBrightYellow,
		core.ColorBrightBlue, core.ColorBrightMagenta, core.ColorBrightCyan,
		core.ColorBrightWhite, core.ColorOrange, core.ColorGray,
	}
	for _, c := range palette {
		if _, ok := colorStyles[c]; !ok {
			t.Errorf("no style for color %d", c)
		}
	}

	s := core.NewScreen(6, 1)
	s.DrawTextColored(0, 0, "orange", core.ColorOrange)
	if got := RenderScreen(s); !strings.Contains(got, "orange") {
		t.Errorf("RenderScreen() = %q", got)
	}
}

func TestSpectatorModelDropsStaleFrames(t *testing.T) {
	hub := spectator.NewHub(spectator.DefaultConfig(), nil, nil, 1)
	hub.Tick()
	hub.Tick()
	m := NewSpectatorModel(hub, 100, 60)

	next, cmd := m.Update(frameMsg(spectator.Frame{Tick: 1}))
	m = next.(SpectatorModel)
	if m.Frame().Tick != 2 || len(m.Frame().Players) != 2 {
		t.Errorf("stale frame replaced the wall: tick %d, %d players", m.Frame().Tick, len(m.Frame().Players))
	}
	if cmd == nil {
		t.Error("expected to keep waiting for frames")
	}
	m.leave()
}

func TestSpectatorModelEmptyWall(t *testing.T) {
	hub := spectator.NewHub(spectator.Config{TickInterval: time.Second}, nil, nil, 1)
	m := NewSpectatorModel(hub, 100, 30)
	if !strings.Contains(m.View(), "No live games right now.") {
		t.Error("empty wall message missing")
	}
	m.leave()
}

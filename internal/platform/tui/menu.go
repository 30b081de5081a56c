package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// MenuChoice identifies a menu entry.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlayWalls
	ChoicePlayPassThrough
	ChoiceWatch
	ChoiceLeaderboard
	ChoiceLogin
	ChoiceSignup
	ChoiceLogout
	ChoiceQuit
)

// MenuItem represents a selectable menu entry.
type MenuItem struct {
	Choice MenuChoice
	Title  string
}

// MenuFeatures switches optional entries on.
type MenuFeatures struct {
	Accounts  bool
	Spectator bool
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	username  string // empty when logged out
	notice    string
	keyMapper *KeyMapper
	quitting  bool
	selected  *MenuItem
}

// NewMenuModel creates a menu for the given login state.
func NewMenuModel(width, height int, username string, features MenuFeatures) MenuModel {
	items := []MenuItem{
		{ChoicePlayWalls, "Play (Walls)"},
		{ChoicePlayPassThrough, "Play (Pass-Through)"},
	}
	if features.Spectator {
		items = append(items, MenuItem{ChoiceWatch, "Watch live games"})
	}
	items = append(items, MenuItem{ChoiceLeaderboard, "Leaderboard"})
	if features.Accounts {
		if username == "" {
			items = append(items,
				MenuItem{ChoiceLogin, "Log in"},
				MenuItem{ChoiceSignup, "Sign up"},
			)
		} else {
			items = append(items, MenuItem{ChoiceLogout, "Log out"})
		}
	}
	items = append(items, MenuItem{ChoiceQuit, "Quit"})

	return MenuModel{
		items:     items,
		width:     width,
		height:    height,
		username:  username,
		keyMapper: NewKeyMapper(),
	}
}

// WithNotice returns the menu with a one-line message under the title.
func (m MenuModel) WithNotice(text string) MenuModel {
	m.notice = text
	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		m.cursor = (m.cursor - 1 + len(m.items)) % len(m.items)

	case MenuActionDown:
		m.cursor = (m.cursor + 1) % len(m.items)

	case MenuActionSelect:
		selected := m.items[m.cursor]
		if selected.Choice == ChoiceQuit {
			m.quitting = true
			return m, tea.Quit
		}
		m.selected = &selected
	}
	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  S N A K E   A R E N A  "), m.width))
	b.WriteString("\n\n")

	who := "Playing as guest (scores are not saved)"
	if m.username != "" {
		who = "Logged in as " + m.username
	}
	b.WriteString(centerText(mutedStyle.Render(who), m.width))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(centerText(okStyle.Render(m.notice), m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range m.items {
		line := fmt.Sprintf("  %s  ", item.Title)
		if i == m.cursor {
			line = focusStyle.Render(fmt.Sprintf("> %s  ", item.Title))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(mutedStyle.Render("Up/Down: Navigate  |  Enter: Select  |  Q: Quit"), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Items returns the visible entries.
func (m MenuModel) Items() []MenuItem {
	return m.items
}

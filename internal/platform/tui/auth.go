package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

// AuthKind selects the form shown by AuthModel.
type AuthKind int

const (
	AuthLogin AuthKind = iota
	AuthSignup
)

// authResultMsg carries the outcome of a login or signup attempt.
type authResultMsg struct {
	user storage.User
	err  error
}

// AuthModel is a login or signup form bound to one account.Session.
type AuthModel struct {
	kind    AuthKind
	session *account.Session
	ctx     context.Context
	inputs  []textinput.Model
	focus   int
	err     string
	busy    bool
	width   int
	height  int

	user     *storage.User
	back     bool
	quitting bool
}

// NewAuthModel creates an empty form.
func NewAuthModel(ctx context.Context, kind AuthKind, session *account.Session, width, height int) AuthModel {
	newInput := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Width = 32
		ti.Prompt = "  "
		return ti
	}

	var inputs []textinput.Model
	if kind == AuthSignup {
		inputs = append(inputs, newInput("username", 24))
	}
	login := newInput("email or username", 254)
	if kind == AuthSignup {
		login.Placeholder = "email"
	}
	password := newInput("password", 100)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	inputs = append(inputs, login, password)
	inputs[0].Focus()

	return AuthModel{
		kind:    kind,
		session: session,
		ctx:     ctx,
		inputs:  inputs,
		width:   width,
		height:  height,
	}
}

// Init starts the cursor blinking.
func (m AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input and submission results.
func (m AuthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = authErrorText(msg.err)
			return m, nil
		}
		u := msg.user
		m.user = &u
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.back = true
			return m, nil
		case "tab", "down":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)
		case "enter":
			if m.busy {
				return m, nil
			}
			if m.focus < len(m.inputs)-1 {
				return m, m.setFocus(m.focus + 1)
			}
			m.busy = true
			m.err = ""
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *AuthModel) setFocus(i int) tea.Cmd {
	n := len(m.inputs)
	m.focus = (i + n) % n
	cmds := make([]tea.Cmd, n)
	for j := range m.inputs {
		if j == m.focus {
			cmds[j] = m.inputs[j].Focus()
			continue
		}
		m.inputs[j].Blur()
	}
	return tea.Batch(cmds...)
}

// submit runs the account call as a command.
func (m AuthModel) submit() tea.Cmd {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = in.Value()
	}
	session, ctx, kind := m.session, m.ctx, m.kind

	return func() tea.Msg {
		var (
			u   storage.User
			err error
		)
		if kind == AuthSignup {
			u, err = session.Signup(ctx, values[0], values[1], values[2])
		} else {
			u, err = session.Login(ctx, values[0], values[1])
		}
		return authResultMsg{user: u, err: err}
	}
}

func authErrorText(err error) string {
	var ve *account.ValidationError
	switch {
	case errors.As(err, &ve):
		return strings.ToUpper(ve.Field[:1]) + ve.Field[1:] + " " + ve.Message
	case errors.Is(err, account.ErrUserExists):
		return "Username or email already taken"
	case errors.Is(err, account.ErrInvalidCredentials):
		return "Invalid credentials"
	}
	return "Something went wrong, please try again"
}

// View renders the form.
func (m AuthModel) View() string {
	if m.quitting {
		return ""
	}

	title := "L O G   I N"
	if m.kind == AuthSignup {
		title = "S I G N   U P"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	for i, in := range m.inputs {
		label := in.Placeholder
		if i == m.focus {
			label = focusStyle.Render(" " + label + " ")
		} else {
			label = mutedStyle.Render(" " + label + " ")
		}
		b.WriteString(centerText(label, m.width))
		b.WriteString("\n")
		b.WriteString(centerText(in.View(), m.width))
		b.WriteString("\n\n")
	}

	switch {
	case m.busy:
		b.WriteString(centerText(mutedStyle.Render("Checking..."), m.width))
	case m.err != "":
		b.WriteString(centerText(errorStyle.Render(m.err), m.width))
	}
	b.WriteString("\n\n")
	b.WriteString(centerText(mutedStyle.Render("Tab: Next field  |  Enter: Submit  |  Esc: Back"), m.width))
	b.WriteString("\n")

	return b.String()
}

// User returns the authenticated user once the form succeeded.
func (m AuthModel) User() *storage.User {
	return m.user
}

// WantsBack returns true if the user cancelled the form.
func (m AuthModel) WantsBack() bool {
	return m.back
}

// IsQuitting returns true if user requested to quit.
func (m AuthModel) IsQuitting() bool {
	return m.quitting
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/intake/internal/session"
)

const (
	loginIdentifier = iota
	loginSecret
)

type loginState struct {
	inputs [2]textinput.Model
	focus  int
}

func newLoginState() loginState {
	id := textinput.New()
	id.Placeholder = "user@example.com"
	id.CharLimit = 128
	id.Width = 32
	id.Prompt = ""
	id.Focus()

	secret := textinput.New()
	secret.Placeholder = "password"
	secret.CharLimit = 128
	secret.Width = 32
	secret.Prompt = ""
	secret.EchoMode = textinput.EchoPassword
	secret.EchoCharacter = '•'

	return loginState{inputs: [2]textinput.Model{id, secret}}
}

func (l *loginState) setFocus(idx int) {
	l.focus = idx
	for i := range l.inputs {
		if i == idx {
			l.inputs[i].Focus()
		} else {
			l.inputs[i].Blur()
		}
	}
}

func (l loginState) credentials() session.Credentials {
	return session.Credentials{
		Identifier: l.inputs[loginIdentifier].Value(),
		Secret:     l.inputs[loginSecret].Value(),
	}
}

// reset clears the secret and keeps the identifier for the next attempt.
func (l *loginState) reset() {
	l.inputs[loginSecret].SetValue("")
	l.setFocus(loginSecret)
}

// handleLoginKey processes keyboard input on the login screen. Login is
// ignored while an attempt is in flight.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.login.setFocus((m.login.focus + 1) % len(m.login.inputs))
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.login.setFocus((m.login.focus + len(m.login.inputs) - 1) % len(m.login.inputs))
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.loggingIn() {
			return m, nil
		}
		if m.login.focus == loginIdentifier && m.login.inputs[loginSecret].Value() == "" {
			m.login.setFocus(loginSecret)
			return m, nil
		}
		m.pendingLogin = true
		return m, loginCmd(m.ctx, m.svc, m.login.credentials())
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m Model) loggingIn() bool {
	return m.pendingLogin || m.snapshot.LoggingIn
}

// renderLogin renders the centered login card.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render("intake"))
	b.WriteString(styles.MutedText.Render("  " + m.svc.Revision().Name))
	b.WriteString("\n\n")

	labels := [2]string{"Email", "Password"}
	for i, input := range m.login.inputs {
		label := padRight(labels[i], 10)
		if i == m.login.focus {
			b.WriteString(styles.AccentText.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.loggingIn() {
		b.WriteString(styles.StatusStyle(badgeBusy).Render("Signing in..."))
	} else {
		b.WriteString(styles.AccentText.Render("enter"))
		b.WriteString(styles.MutedText.Render(" to sign in"))
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(1, 3).
		Width(52)

	return lipgloss.Place(
		m.width,
		m.height-2,
		lipgloss.Center,
		lipgloss.Center,
		card.Render(b.String()),
	)
}

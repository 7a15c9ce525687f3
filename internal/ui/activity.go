package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/intake/internal/logtail"
)

// activityState holds the tailed log for the activity view.
type activityState struct {
	path     string
	follower *logtail.Follower
	lines    []string
	loaded   bool
	follow   bool
	dirty    bool
}

// loadActivity reads the recent backlog once, then follows appended lines.
func (m *Model) loadActivity() {
	a := &m.activity
	if a.loaded || a.path == "" {
		return
	}
	a.loaded = true
	a.follow = true
	backlog, err := logtail.Read(a.path, ActivityBacklog)
	if err != nil {
		m.logger.Debug("activity backlog unavailable", zap.Error(err))
	}
	a.lines = formatLogLines(backlog)
	a.follower = logtail.NewFollower(a.path)
	if _, err := a.follower.Poll(); err != nil {
		m.logger.Debug("activity follower unavailable", zap.Error(err))
	}
	a.dirty = true
}

// pollActivity appends new log lines. It reports whether anything changed.
func (m *Model) pollActivity() bool {
	a := &m.activity
	if !a.loaded || a.follower == nil {
		return false
	}
	lines, err := a.follower.Poll()
	if err != nil {
		m.logger.Debug("activity poll failed", zap.Error(err))
		return false
	}
	if len(lines) == 0 {
		return false
	}
	a.lines = trimActivity(append(a.lines, formatLogLines(lines)...), ActivityBufferLimit)
	a.dirty = true
	return true
}

func trimActivity(lines []string, limit int) []string {
	if limit <= 0 || len(lines) <= limit {
		return lines
	}
	return lines[len(lines)-limit:]
}

// updateActivityViewport sizes the viewport and re-renders changed content.
func (m *Model) updateActivityViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	if m.activityViewport.Width == 0 {
		m.activityViewport = viewport.New(m.width-4, m.height-5)
	}
	m.activityViewport.Width = m.width - 4
	m.activityViewport.Height = m.height - 5
	m.activityViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.activity.dirty {
		m.activityViewport.SetContent(m.renderActivityContent(m.activity.lines))
		m.activity.dirty = false
	}
	if m.activity.follow {
		m.activityViewport.GotoBottom()
	}
}

func (m Model) renderActivityContent(lines []string) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	if len(lines) == 0 {
		return styles.MutedText.Render("No activity yet")
	}
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, m.levelStyle(levelOf(line), styles).Render(line))
	}
	return strings.Join(rendered, "\n")
}

func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return styles.DangerText
	case "WARN":
		return styles.WarningText
	case "DEBUG":
		return styles.FaintText
	default:
		return styles.Text
	}
}

// renderActivity renders the full-screen activity view.
func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Activity") +
		styles.MutedText.Render(ternary(m.activity.follow, "  following", "  paused"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(m.width - 2).
		Height(m.height - 5)
	return title + "\n" + box.Render(m.activityViewport.View())
}

// renderActivityStrip renders the last few lines below the form.
func (m Model) renderActivityStrip(rows int) string {
	styles := m.theme.Styles()
	lines := m.activity.lines
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	out := make([]string, 0, rows)
	for _, line := range lines {
		first, _, _ := strings.Cut(line, "\n")
		out = append(out, styles.FaintText.Render(truncate(first, m.width-2)))
	}
	return strings.Join(out, "\n")
}

// handleActivityKey processes keyboard input for the activity view.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Activity):
		m.currentView = ViewForm
		return m, nil
	case key.Matches(msg, m.keys.ToggleFollow):
		m.activity.follow = !m.activity.follow
		if m.activity.follow {
			m.activityViewport.GotoBottom()
		}
	case key.Matches(msg, m.keys.Top):
		m.activity.follow = false
		m.activityViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.activity.follow = true
		m.activityViewport.GotoBottom()
	case key.Matches(msg, m.keys.Down):
		m.activityViewport.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.activity.follow = false
		m.activityViewport.LineUp(1)
	case key.Matches(msg, m.keys.PageDown):
		m.activityViewport.ViewDown()
	case key.Matches(msg, m.keys.PageUp):
		m.activity.follow = false
		m.activityViewport.ViewUp()
	}
	return m, nil
}

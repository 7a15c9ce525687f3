package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/notice"
)

// badgeBusy colors in-flight login and submit indicators.
const badgeBusy = "busy"

// renderHeader renders the top line: product, revision, user, activity
// badges and the newest notice.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	left := []string{
		bg.Render("intake", styles.Logo),
		bg.Render(m.svc.Revision().Name, styles.MutedText),
	}
	if m.snapshot.Authenticated {
		user := m.snapshot.User
		if m.width < LayoutCompactWidth {
			user = truncate(user, 16)
		}
		left = append(left, bg.Render(user, styles.AccentText))
	}
	if badge := m.activityBadge(); badge != "" {
		left = append(left, badge)
	}
	content := strings.Join(left, bg.Spaces(2))

	if n, ok := m.latestNotice(); ok {
		right := m.renderNotice(n, styles, bg)
		if extra := len(m.notices) - 1; extra > 0 {
			right += bg.Render(fmt.Sprintf(" +%d", extra), styles.FaintText)
		}
		gap := m.width - lipgloss.Width(content) - lipgloss.Width(right) - 2
		if gap < 1 {
			gap = 1
		}
		content += bg.Spaces(gap) + right
	}
	return styles.Header.Width(m.width).Render(content)
}

// activityBadge shows the operation in flight, if any.
func (m Model) activityBadge() string {
	styles := m.theme.Styles()
	switch {
	case m.loggingIn():
		return styles.StatusStyle(badgeBusy).Render("signing in")
	case m.submitting():
		return styles.StatusStyle(badgeBusy).Render("sending")
	case m.recording.State == audio.StateRecording:
		return styles.StatusStyle(string(audio.StateRecording)).Render("REC " + audio.FormatElapsed(m.recording.Elapsed))
	case m.recording.State == audio.StateStopping:
		return styles.StatusStyle(badgeBusy).Render("finalizing audio")
	}
	return ""
}

func (m Model) latestNotice() (notice.Notice, bool) {
	if len(m.notices) == 0 {
		return notice.Notice{}, false
	}
	return m.notices[len(m.notices)-1], true
}

func (m Model) renderNotice(n notice.Notice, styles Styles, bg BgStyle) string {
	badge := styles.StatusStyle(string(n.Level)).Render(n.Title)
	text := strings.TrimSpace(n.Text)
	if text == "" {
		return badge
	}
	limit := m.width / 2
	if limit < 20 {
		limit = 20
	}
	return badge + bg.Spaces(1) + bg.Render(truncate(text, limit), styles.Text)
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.currentView == ViewActivity:
		commands = []cmd{
			{"f", ternary(m.activity.follow, "Pause", "Follow")},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"esc", "Back"},
		}
	case !m.snapshot.Authenticated:
		commands = []cmd{
			{"tab", "Next"},
			{"enter", "Sign in"},
			{"ctrl+l", "Activity"},
		}
	default:
		commands = []cmd{
			{"tab", "Next"},
			{"←/→", "Choose"},
			{"ctrl+r", ternary(m.recording.State == audio.StateRecording, "Stop", "Record")},
			{"ctrl+s", "Send"},
			{"ctrl+n", "New"},
			{"ctrl+o", "Log out"},
		}
	}
	commands = append(commands, cmd{"f1", "Help"})

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	return bg.FillLine(bg.Spaces(1)+strings.Join(segments, bg.Spaces(2)), m.width)
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/intake/internal/directory"
)

// pickerRows is the number of entries shown at once.
const pickerRows = 8

type pickerEntry struct {
	id    string
	label string
}

// pickedMsg carries a picker selection back to the form.
type pickedMsg struct {
	field fieldID
	id    string
}

// picker is a searchable list for the veterinarian and clinic selections.
type picker struct {
	field   fieldID
	title   string
	search  textinput.Model
	filter  func(query string) []pickerEntry
	matches []pickerEntry
	cursor  int
}

func newVetPicker(dir directory.Directory, currentID string) *picker {
	return newPicker(fieldVet, "Select veterinarian", currentID, func(q string) []pickerEntry {
		vets := dir.SearchVeterinarians(q)
		out := make([]pickerEntry, 0, len(vets))
		for _, v := range vets {
			out = append(out, pickerEntry{id: v.ID, label: v.DisplayName})
		}
		return out
	})
}

func newClinicPicker(dir directory.Directory, currentID string) *picker {
	return newPicker(fieldClinic, "Select clinic", currentID, func(q string) []pickerEntry {
		q = strings.ToLower(strings.TrimSpace(q))
		var out []pickerEntry
		for _, c := range dir.Clinics {
			if q == "" || strings.Contains(strings.ToLower(c.Address), q) {
				out = append(out, pickerEntry{id: c.ID, label: c.Address})
			}
		}
		return out
	})
}

func newPicker(field fieldID, title, currentID string, filter func(string) []pickerEntry) *picker {
	search := textinput.New()
	search.Placeholder = "Type to search"
	search.Prompt = "/ "
	search.CharLimit = 64
	search.Focus()

	p := &picker{field: field, title: title, search: search, filter: filter}
	p.matches = filter("")
	for i, e := range p.matches {
		if e.id == currentID {
			p.cursor = i
			break
		}
	}
	return p
}

// Update implements Modal.
func (p *picker) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Escape):
		return p, nil, true
	case key.Matches(keyMsg, keys.Confirm):
		if len(p.matches) == 0 {
			return p, nil, false
		}
		picked := pickedMsg{field: p.field, id: p.matches[p.cursor].id}
		return p, func() tea.Msg { return picked }, true
	case keyMsg.String() == "up", keyMsg.String() == "shift+tab":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil, false
	case keyMsg.String() == "down", keyMsg.String() == "tab":
		if p.cursor < len(p.matches)-1 {
			p.cursor++
		}
		return p, nil, false
	}

	var cmd tea.Cmd
	before := p.search.Value()
	p.search, cmd = p.search.Update(keyMsg)
	if p.search.Value() != before {
		p.matches = p.filter(p.search.Value())
		p.cursor = 0
	}
	return p, cmd, false
}

// View implements Modal.
func (p *picker) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(p.title))
	b.WriteString("\n")
	b.WriteString(p.search.View())
	b.WriteString("\n\n")

	if len(p.matches) == 0 {
		b.WriteString(styles.MutedText.Render("No matches"))
	}
	start := 0
	if p.cursor >= pickerRows {
		start = p.cursor - pickerRows + 1
	}
	end := start + pickerRows
	if end > len(p.matches) {
		end = len(p.matches)
	}
	for i := start; i < end; i++ {
		line := padRight(truncate(p.matches[i].label, 40), 40)
		if i == p.cursor {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(48)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

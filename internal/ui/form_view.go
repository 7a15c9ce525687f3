package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/revision"
)

// formState tracks focus and the text inputs of the report form. The
// service's form is the source of truth; inputs mirror it.
type formState struct {
	defs   []fieldDef
	focus  int
	inputs map[fieldID]textinput.Model
}

func newFormState(rev revision.Revision) formState {
	inputs := make(map[fieldID]textinput.Model, len(textFields))
	for _, id := range textFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 40
		switch id {
		case fieldBirthDate:
			ti.Placeholder = "YYYY-MM-DD"
			ti.CharLimit = 10
		case fieldWeight:
			ti.Placeholder = "12,5"
			ti.CharLimit = 8
		case fieldWebhook:
			ti.Placeholder = "https://"
		case fieldNotes:
			ti.CharLimit = 2000
		}
		inputs[id] = ti
	}
	return formState{defs: fieldsFor(rev), inputs: inputs}
}

// visible returns the fields currently shown. The microchip number only
// appears once the microchip flag is on.
func (fs formState) visible(f form.Form) []fieldDef {
	out := make([]fieldDef, 0, len(fs.defs))
	for _, def := range fs.defs {
		if def.id == fieldChip && !f.Patient.HasMicrochip {
			continue
		}
		out = append(out, def)
	}
	return out
}

func (m Model) focusedField() (fieldDef, bool) {
	fields := m.form.visible(m.snapshot.Form)
	if len(fields) == 0 {
		return fieldDef{}, false
	}
	idx := m.form.focus
	if idx >= len(fields) {
		idx = len(fields) - 1
	}
	return fields[idx], true
}

// moveFocus shifts focus by delta, wrapping, and focuses the matching input.
func (m *Model) moveFocus(delta int) {
	fields := m.form.visible(m.snapshot.Form)
	if len(fields) == 0 {
		return
	}
	m.form.focus = (m.form.focus + delta + len(fields)) % len(fields)
	m.applyInputFocus()
}

func (m *Model) applyInputFocus() {
	focused, ok := m.focusedField()
	for id, input := range m.form.inputs {
		if ok && id == focused.id && kindOf(id, m.snapshot.Form) == kindText {
			input.Focus()
		} else {
			input.Blur()
		}
		m.form.inputs[id] = input
	}
}

// syncInputs copies form values into inputs that no longer match, which
// happens after the form is cleared, reset or logged out.
func (m *Model) syncInputs() {
	fields := m.form.visible(m.snapshot.Form)
	if m.form.focus >= len(fields) && len(fields) > 0 {
		m.form.focus = len(fields) - 1
	}
	for id, input := range m.form.inputs {
		want := textValue(id, m.snapshot.Form)
		if !sameText(input.Value(), want) {
			input.SetValue(want)
			m.form.inputs[id] = input
		}
	}
	m.applyInputFocus()
}

// handleFormKey processes keyboard input for the report form.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.pendingSubmit || !m.snapshot.CanSubmit() {
			return m, nil
		}
		m.pendingSubmit = true
		return m, submitCmd(m.ctx, m.svc)
	case key.Matches(msg, m.keys.Record):
		switch m.recording.State {
		case audio.StateRecording:
			return m, stopRecordingCmd(m.svc)
		case audio.StateStopping:
			return m, nil
		}
		return m, startRecordingCmd(m.ctx, m.svc)
	case key.Matches(msg, m.keys.DiscardAudio):
		m.svc.DiscardRecording()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.ClearForm):
		m.svc.ClearForm()
		m.form.focus = 0
		m.refresh()
		return m, nil
	}

	def, ok := m.focusedField()
	if !ok {
		return m, nil
	}

	switch kindOf(def.id, m.snapshot.Form) {
	case kindChoice:
		delta := 0
		switch {
		case key.Matches(msg, m.keys.OptionNext), key.Matches(msg, m.keys.Toggle):
			delta = 1
		case key.Matches(msg, m.keys.OptionPrev):
			delta = -1
		case key.Matches(msg, m.keys.Confirm):
			m.moveFocus(1)
			return m, nil
		}
		if delta != 0 {
			options := choiceOptions(def.id, m.svc.Revision(), m.snapshot.Form)
			next := cycleOption(options, choiceValue(def.id, m.snapshot.Form), delta)
			m.svc.Edit(func(f *form.Form) { setChoice(def.id, f, next) })
			m.refresh()
		}
		return m, nil

	case kindToggle:
		if key.Matches(msg, m.keys.Toggle, m.keys.Confirm, m.keys.OptionNext, m.keys.OptionPrev) {
			present := !m.snapshot.Form.Patient.HasMicrochip
			m.svc.Edit(func(f *form.Form) { f.SetMicrochipPresent(present) })
			m.refresh()
		}
		return m, nil

	case kindPicker:
		if key.Matches(msg, m.keys.Confirm, m.keys.Toggle) {
			dir := m.snapshot.Directory
			if def.id == fieldVet {
				m.modal = newVetPicker(dir, m.snapshot.Form.Selections.VeterinarianID)
			} else {
				m.modal = newClinicPicker(dir, m.snapshot.Form.Selections.ClinicID)
			}
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Confirm) {
		m.moveFocus(1)
		return m, nil
	}
	input := m.form.inputs[def.id]
	var cmd tea.Cmd
	input, cmd = input.Update(msg)
	m.form.inputs[def.id] = input
	if value := input.Value(); value != textValue(def.id, m.snapshot.Form) {
		m.svc.Edit(func(f *form.Form) { setText(def.id, f, value) })
		m.snapshot = m.svc.Snapshot()
	}
	return m, cmd
}

// applyPick stores a picker selection.
func (m *Model) applyPick(msg pickedMsg) {
	m.svc.Edit(func(f *form.Form) {
		if msg.field == fieldVet {
			f.SelectVeterinarian(msg.id)
		} else {
			f.SelectClinic(msg.id)
		}
	})
	m.refresh()
}

func (m Model) submitting() bool {
	return m.pendingSubmit || m.snapshot.Submitting
}

// renderForm renders the field list, the audio panel and the send line.
func (m Model) renderForm() string {
	styles := m.theme.Styles()
	rev := m.svc.Revision()
	f := m.snapshot.Form
	fields := m.form.visible(f)

	stripRows := 0
	if m.showActivity {
		stripRows = 3
	}
	// two lines for the audio panel and send line, one blank separator
	rows := m.height - 2 - 3 - stripRows
	if m.showActivity {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.form.focus >= rows {
		start = m.form.focus - rows + 1
	}
	end := start + rows
	if end > len(fields) {
		end = len(fields)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		def := fields[i]
		focused := i == m.form.focus && m.modal == nil

		marker := " "
		if isRequired(def, rev) {
			marker = "*"
		}
		label := padRight(marker+" "+def.label, FieldLabelWidth)
		if focused {
			b.WriteString(styles.Focused.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
		b.WriteString(" ")
		b.WriteString(m.renderFieldValue(def, focused, styles))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderAudioPanel(styles))
	b.WriteString("\n")
	b.WriteString(m.renderSendLine(styles))

	if m.showActivity {
		b.WriteString("\n\n")
		b.WriteString(m.renderActivityStrip(stripRows))
	}
	return b.String()
}

func (m Model) renderFieldValue(def fieldDef, focused bool, styles Styles) string {
	f := m.snapshot.Form
	switch kindOf(def.id, f) {
	case kindChoice:
		options := choiceOptions(def.id, m.svc.Revision(), f)
		current := choiceValue(def.id, f)
		label := optionLabel(options, current)
		if def.id == fieldBreed && f.Patient.Species == "" {
			return styles.FaintText.Render("choose a species first")
		}
		text := styles.Text.Render(label)
		if current == "" {
			text = styles.FaintText.Render(label)
		}
		if focused {
			return styles.AccentText.Render("‹ ") + text + styles.AccentText.Render(" ›")
		}
		return text

	case kindToggle:
		return styles.Text.Render(ternary(f.Patient.HasMicrochip, "[x] Yes", "[ ] No"))

	case kindPicker:
		label := pickerLabel(def.id, m.snapshot.Directory, f)
		if label == "" {
			hint := "none"
			if focused {
				hint = "press enter to choose"
			}
			return styles.FaintText.Render(hint)
		}
		return styles.Text.Render(truncate(label, 48))
	}
	return m.form.inputs[def.id].View()
}

func (m Model) renderAudioPanel(styles Styles) string {
	rev := m.svc.Revision()
	marker := ternary(rev.Requires(revision.FieldAudio), "*", " ")
	label := styles.MutedText.Render(padRight(marker+" Audio note", FieldLabelWidth)) + " "

	st := m.recording
	switch st.State {
	case audio.StateRecording:
		return label + styles.StatusStyle(string(audio.StateRecording)).Render("REC "+audio.FormatElapsed(st.Elapsed)) +
			styles.MutedText.Render("  ctrl+r to stop")
	case audio.StateStopping:
		return label + styles.StatusStyle(badgeBusy).Render("finalizing") +
			styles.MutedText.Render("  "+audio.FormatElapsed(st.Elapsed))
	case audio.StateCaptured:
		detail := fmt.Sprintf("%s  %s", audio.FormatElapsed(st.Note.Duration), formatSize(st.Note.Size))
		return label + styles.StatusStyle(string(audio.StateCaptured)).Render("captured") +
			" " + styles.Text.Render(detail) +
			styles.MutedText.Render("  ctrl+x to discard")
	default:
		return label + styles.StatusStyle(string(audio.StateIdle)).Render("no recording") +
			styles.MutedText.Render("  ctrl+r to record")
	}
}

func (m Model) renderSendLine(styles Styles) string {
	if m.submitting() {
		return styles.StatusStyle(badgeBusy).Render("Sending report...")
	}
	line := styles.AccentText.Render("ctrl+s") + styles.MutedText.Render(" send report")
	if n := m.snapshot.Submissions; n > 0 {
		line += styles.FaintText.Render(fmt.Sprintf("   %d sent this session", n))
	}
	return line
}

func formatSize(bytes int) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%d KB", bytes>>10)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

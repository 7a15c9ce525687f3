package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/notice"
	"github.com/five82/intake/internal/prefs"
	"github.com/five82/intake/internal/revision"
	"github.com/five82/intake/internal/session"
	"github.com/five82/intake/internal/state"
)

// View represents the current active view.
type View int

const (
	// ViewForm is the login screen before authentication and the report
	// form after.
	ViewForm View = iota
	ViewActivity
)

// Service is the application surface the UI drives. *intake.Service
// implements it.
type Service interface {
	Revision() revision.Revision
	Snapshot() state.Snapshot
	Recording() audio.Status
	Notices() []notice.Notice
	AttemptLogin(ctx context.Context, creds session.Credentials) error
	Logout()
	Edit(fn func(*form.Form))
	ClearForm()
	StartRecording(ctx context.Context) error
	StopRecording() error
	DiscardRecording()
	Submit(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Service      Service
	Logger       *zap.Logger
	LogPath      string
	PollTick     time.Duration
	ThemeName    string
	ShowActivity bool
	PrefsPath    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	svc       Service
	logger    *zap.Logger
	keys      keyMap
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme        Theme
	currentView  View
	width        int
	height       int
	ready        bool
	showHelp     bool
	showActivity bool
	modal        Modal

	// Data state
	snapshot  state.Snapshot
	recording audio.Status
	notices   []notice.Notice

	// Requests dispatched but not yet reflected in the snapshot
	pendingLogin  bool
	pendingSubmit bool

	login loginState
	form  formState

	activity         activityState
	activityViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		ctx:          ctx,
		svc:          opts.Service,
		logger:       logger,
		keys:         DefaultKeyMap(),
		prefsPath:    opts.PrefsPath,
		pollTick:     pollTick,
		theme:        GetTheme(themeName),
		currentView:  ViewForm,
		showActivity: opts.ShowActivity,
		login:        newLoginState(),
		form:         newFormState(opts.Service.Revision()),
		activity:     activityState{path: opts.LogPath},
	}
	m.loadActivity()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.pollTick), textinput.Blink)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateActivityViewport()
		return m, nil

	case tickMsg:
		m.refresh()
		if m.pollActivity() || m.currentView == ViewActivity {
			m.updateActivityViewport()
		}
		return m, tickCmd(m.pollTick)

	case loginDoneMsg:
		m.pendingLogin = false
		m.login.reset()
		if msg.err == nil {
			m.form.focus = 0
		}
		m.refresh()
		return m, nil

	case submitDoneMsg:
		m.pendingSubmit = false
		if msg.err == nil && m.svc.Revision().ResetAfterSubmit {
			m.form.focus = 0
		}
		m.refresh()
		return m, nil

	case recordingMsg:
		m.refresh()
		return m, nil

	case pickedMsg:
		m.applyPick(msg)
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

// updateFocusedInput forwards non-key messages such as cursor blinks to the
// focused input.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if !m.snapshot.Authenticated {
		m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
		return m, cmd
	}
	if def, ok := m.focusedField(); ok {
		if input, isText := m.form.inputs[def.id]; isText && kindOf(def.id, m.snapshot.Form) == kindText {
			input, cmd = input.Update(msg)
			m.form.inputs[def.id] = input
		}
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Activity) && m.currentView != ViewActivity:
		m.currentView = ViewActivity
		m.activity.dirty = true
		m.updateActivityViewport()
		return m, nil
	case key.Matches(msg, m.keys.Logout) && m.snapshot.Authenticated:
		m.svc.Logout()
		m.currentView = ViewForm
		m.form.focus = 0
		m.login.reset()
		m.login.setFocus(loginIdentifier)
		m.refresh()
		return m, nil
	}

	switch {
	case m.currentView == ViewActivity:
		return m.handleActivityKey(msg)
	case !m.snapshot.Authenticated:
		return m.handleLoginKey(msg)
	default:
		return m.handleFormKey(msg)
	}
}

// cycleTheme switches to the next theme and saves the choice.
func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.activity.dirty = true
	m.updateActivityViewport()
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, ShowActivity: m.showActivity}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("preferences not saved", zap.Error(err))
	}
}

// refresh pulls the latest state from the service.
func (m *Model) refresh() {
	m.snapshot = m.svc.Snapshot()
	m.recording = m.svc.Recording()
	m.notices = m.svc.Notices()
	m.syncInputs()
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch {
	case m.currentView == ViewActivity:
		return m.renderActivity()
	case !m.snapshot.Authenticated:
		return m.renderLogin()
	default:
		return m.renderForm()
	}
}

// Messages

type tickMsg time.Time

type loginDoneMsg struct{ err error }

type submitDoneMsg struct{ err error }

type recordingMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loginCmd(ctx context.Context, svc Service, creds session.Credentials) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: svc.AttemptLogin(ctx, creds)}
	}
}

func submitCmd(ctx context.Context, svc Service) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: svc.Submit(ctx)}
	}
}

func startRecordingCmd(ctx context.Context, svc Service) tea.Cmd {
	return func() tea.Msg {
		return recordingMsg{err: svc.StartRecording(ctx)}
	}
}

func stopRecordingCmd(svc Service) tea.Cmd {
	return func() tea.Msg {
		return recordingMsg{err: svc.StopRecording()}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}

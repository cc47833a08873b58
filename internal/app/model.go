package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reviewdiff/internal/clipboard"
	"reviewdiff/internal/diffview"
	"reviewdiff/internal/log"
	"reviewdiff/internal/render"
	"reviewdiff/internal/session"
	"reviewdiff/internal/source"
	"reviewdiff/internal/theme"
)

const (
	hscrollStep  = 4
	alertTimeout = 3 * time.Second
	helpWidth    = 96
)

type filesLoadedMsg struct {
	gen   int
	files []diffview.FileDiff
	err   error
}

// watchEventMsg is sent after the watcher reports a debounced change.
type watchEventMsg struct{}

type pollTickMsg struct{}

type clipboardResultMsg struct {
	path string
	err  error
}

type alertTickMsg struct{}

// Options wires a Model to its collaborators.
type Options struct {
	Source   source.Source
	Renderer *render.Renderer
	Settings session.Settings
	Session  []session.Option
	// Label names what is being reviewed in the footer.
	Label       string
	HideSidebar bool
	// Watch delivers change signals for local sources. Nil disables it.
	Watch <-chan struct{}
	// PollInterval re-fetches remote sources in watch mode. Zero disables it.
	PollInterval time.Duration
}

// Model is the Bubble Tea state container for the app.
type Model struct {
	keys     KeyMap
	help     help.Model
	src      source.Source
	renderer *render.Renderer
	settings session.Settings
	sessOpts []session.Option
	session  *session.State
	label    string
	noSide   bool

	watch        <-chan struct{}
	pollInterval time.Duration

	width  int
	height int
	ready  bool

	loadGen  int
	cancel   context.CancelFunc
	initLoad tea.Cmd
	loading  bool
	loaded   bool
	err      error

	helpOpen   bool
	pendingTop bool
	alertMsg   string
	alertUntil time.Time

	copyText func(string) error
}

func NewModel(opts Options) Model {
	r := opts.Renderer
	if r == nil {
		r = render.New(theme.Dark(), nil)
	}
	m := Model{
		keys:         defaultKeyMap(),
		help:         help.New(),
		src:          opts.Source,
		renderer:     r,
		settings:     opts.Settings,
		sessOpts:     opts.Session,
		session:      session.New(nil, opts.Settings, opts.Session...),
		label:        opts.Label,
		noSide:       opts.HideSidebar,
		watch:        opts.Watch,
		pollInterval: opts.PollInterval,
		copyText:     clipboard.CopyText,
	}
	m.help.ShowAll = true
	m.initLoad = m.startLoad()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initLoad, m.listenCmd(), m.pollCmd(), alertTickCmd())
}

// Session exposes the review state, mainly for tests and the CLI.
func (m Model) Session() *session.State {
	return m.session
}

func (m Model) watching() bool {
	return m.watch != nil || m.pollInterval > 0
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = max(0, min(helpWidth, msg.Width)-8)
		m.syncViewport()
		return m, nil

	case filesLoadedMsg:
		if msg.gen != m.loadGen {
			log.Debug(log.CatUI, "discarding stale load", "gen", msg.gen, "current", m.loadGen)
			return m, nil
		}
		m.loading = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if msg.err != nil {
			m.err = msg.err
			log.ErrorErr(log.CatUI, "loading diff failed", msg.err, "source", m.describe())
			return m, nil
		}
		m.err = nil
		m.applyFiles(msg.files)
		return m, nil

	case watchEventMsg:
		m.session.RequestReload()
		return m, tea.Batch(m.startLoad(), m.listenCmd())

	case pollTickMsg:
		var load tea.Cmd
		if !m.loading {
			m.session.RequestReload()
			load = m.startLoad()
		}
		return m, tea.Batch(load, m.pollCmd())

	case clipboardResultMsg:
		if msg.err != nil {
			m.setAlert(fmt.Sprintf("copy failed: %v", msg.err))
			return m, nil
		}
		m.setAlert("Copied " + msg.path)
		return m, nil

	case alertTickMsg:
		if m.alertMsg != "" && !m.alertUntil.IsZero() && time.Now().After(m.alertUntil) {
			m.alertMsg = ""
			m.alertUntil = time.Time{}
		}
		return m, alertTickCmd()

	case tea.KeyMsg:
		next, cmd := m.handleKey(msg)
		next.syncViewport()
		return next, cmd
	}

	return m, nil
}

// applyFiles installs a freshly loaded file list. The first successful
// load builds the session; later ones reload it in place.
func (m *Model) applyFiles(files []diffview.FileDiff) {
	if !m.loaded {
		m.session = session.New(files, m.settings, m.sessOpts...)
		if m.noSide {
			m.session.ToggleSidebar()
		}
		m.loaded = true
		log.Info(log.CatUI, "loaded files", "count", len(files), "source", m.describe())
	} else {
		changed := diffview.ChangedFiles(m.session.Files(), files)
		m.session.Reload(files, changed)
	}
	m.syncViewport()
}

func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	l := m.renderer.Layout(m.session, m.width, m.height)
	m.session.SetViewportHeight(l.DiffRows)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := m.session

	if s.Search().Composing() {
		return m.handleSearchInput(msg)
	}

	if m.helpOpen {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.stopLoad()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Clear):
			m.helpOpen = false
		}
		return m, nil
	}

	// gg jumps to the top; any other key cancels a pending g.
	if msg.String() == "g" {
		if m.pendingTop {
			m.pendingTop = false
			s.ScrollTop()
			return m, nil
		}
		m.pendingTop = true
		return m, nil
	}
	m.pendingTop = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopLoad()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpOpen = true

	case key.Matches(msg, m.keys.Refresh):
		s.RequestReload()
		return m, m.startLoad()

	case key.Matches(msg, m.keys.Search):
		s.BeginSearch()

	case key.Matches(msg, m.keys.Clear):
		s.ClearSearch()

	case key.Matches(msg, m.keys.NextMatch):
		s.NextMatch()

	case key.Matches(msg, m.keys.PrevMatch):
		s.PrevMatch()

	case key.Matches(msg, m.keys.ToggleFocus):
		s.ToggleFocus()

	case key.Matches(msg, m.keys.FocusSidebar):
		s.SetFocus(session.FocusSidebar)

	case key.Matches(msg, m.keys.FocusDiff):
		s.SetFocus(session.FocusDiff)

	case key.Matches(msg, m.keys.ToggleSidebar):
		s.ToggleSidebar()

	case key.Matches(msg, m.keys.Fullscreen):
		s.CycleFullscreen()

	case key.Matches(msg, m.keys.NextFile):
		s.NextFile()

	case key.Matches(msg, m.keys.PrevFile):
		s.PrevFile()

	case key.Matches(msg, m.keys.NextHunk):
		s.NextHunk()

	case key.Matches(msg, m.keys.PrevHunk):
		s.PrevHunk()

	case key.Matches(msg, m.keys.Viewed):
		s.ToggleViewed()

	case key.Matches(msg, m.keys.CopyPath):
		return m, m.copyPathCmd()

	case key.Matches(msg, m.keys.Top):
		s.ScrollTop()

	case key.Matches(msg, m.keys.Bottom):
		s.ScrollBottom()

	default:
		if s.Focus() == session.FocusSidebar {
			return m.updateSidebar(msg)
		}
		return m.updateDiff(msg)
	}
	return m, nil
}

func (m Model) updateSidebar(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Down):
		s.NextFile()
	case key.Matches(msg, m.keys.Up):
		s.PrevFile()
	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Right):
		s.SetFocus(session.FocusDiff)
	case key.Matches(msg, m.keys.PageDown), key.Matches(msg, m.keys.PageUp):
		return m.updateDiff(msg)
	}
	return m, nil
}

func (m Model) updateDiff(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := m.session
	half := max(1, s.ViewportHeight()/2)
	switch {
	case key.Matches(msg, m.keys.Down):
		s.ScrollBy(1)
	case key.Matches(msg, m.keys.Up):
		s.ScrollBy(-1)
	case key.Matches(msg, m.keys.PageDown):
		s.ScrollBy(half)
	case key.Matches(msg, m.keys.PageUp):
		s.ScrollBy(-half)
	case key.Matches(msg, m.keys.Left):
		s.HScrollBy(-hscrollStep)
	case key.Matches(msg, m.keys.Right):
		s.HScrollBy(hscrollStep)
	case key.Matches(msg, m.keys.LineStart):
		s.ResetHScroll()
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := m.session
	switch msg.Type {
	case tea.KeyCtrlC:
		m.stopLoad()
		return m, tea.Quit
	case tea.KeyEsc:
		s.CancelSearch()
	case tea.KeyEnter:
		s.ConfirmSearch()
	case tea.KeyBackspace:
		s.SearchBackspace()
	case tea.KeySpace:
		s.SearchInput(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			s.SearchInput(r)
		}
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	st := render.Status{
		Label:    m.label,
		Watching: m.watching(),
		Loading:  m.loading,
		Alert:    m.alertMsg,
		Err:      m.err,
	}
	if m.err != nil && st.Alert == "" && !m.session.Empty() {
		st.Alert = "error: " + m.err.Error()
	}

	body := m.renderer.Render(m.session, st, m.width, m.height)
	if m.helpOpen {
		dock := m.renderer.Dock("Keys", m.help.View(m.keys), min(helpWidth, m.width-4))
		body = render.Overlay(body, dock, m.width, lipgloss.Height(body))
	}
	return body
}

// startLoad cancels any in-flight load and starts a new generation.
func (m *Model) startLoad() tea.Cmd {
	if m.src == nil {
		return nil
	}
	m.stopLoad()
	m.loadGen++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.loading = true

	src := m.src
	gen := m.loadGen
	return func() tea.Msg {
		files, err := src.Load(ctx)
		return filesLoadedMsg{gen: gen, files: files, err: err}
	}
}

func (m *Model) stopLoad() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m Model) listenCmd() tea.Cmd {
	ch := m.watch
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return watchEventMsg{}
	}
}

func (m Model) pollCmd() tea.Cmd {
	if m.pollInterval <= 0 || m.src == nil || m.src.Local() {
		return nil
	}
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m Model) copyPathCmd() tea.Cmd {
	name, ok := m.session.CurrentFilename()
	if !ok {
		return nil
	}
	copyText := m.copyText
	return func() tea.Msg {
		return clipboardResultMsg{path: name, err: copyText(name)}
	}
}

func (m Model) describe() string {
	if m.src == nil {
		return ""
	}
	return m.src.Describe()
}

func alertTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return alertTickMsg{}
	})
}

func (m *Model) setAlert(msg string) {
	m.alertMsg = msg
	m.alertUntil = time.Now().Add(alertTimeout)
}

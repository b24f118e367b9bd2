package tui

import (
	"context"
	"errors"
	"strings"

	"ohara-cli/internal/dashboard"
	"ohara-cli/internal/reports"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Options wires the TUI to the dashboard session and report viewer.
type Options struct {
	Session  *dashboard.Session
	Viewer   *reports.Viewer
	Renderer *reports.TerminalRenderer
	// Theme is "light", "dark" or "auto".
	Theme  string
	Logger zerolog.Logger
}

// Run starts the interactive UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil || opts.Viewer == nil {
		return errors.New("tui: session and viewer are required")
	}
	applyThemePreference(opts.Theme)
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

type tab int

const (
	tabDashboard tab = iota
	tabMetadata
	tabReports
)

var tabTitles = []string{"Dashboard", "Metadata", "Reports"}

// Messages delivered by background commands.
type loadedMsg struct{ err error }

// actionDoneMsg ends a mutation; the session has already reloaded.
type actionDoneMsg struct{ err error }

type savedMsg struct{ err error }

type reportsListMsg struct {
	entries []reports.Entry
	err     error
}

type reportOpenedMsg struct {
	report reports.Report
	err    error
}

type appModel struct {
	ctx      context.Context
	session  *dashboard.Session
	viewer   *reports.Viewer
	renderer *reports.TerminalRenderer
	log      zerolog.Logger

	width  int
	height int

	tab   tab
	modal modalKind
	alert string
	busy  bool

	// Dashboard.
	rowIdx       int
	rowOff       int
	tagMode      bool
	tagIdx       int
	deleteID     string
	confirmFocus confirmModalFocus
	editor       editorModel

	// Metadata.
	metaCol    metaColumn
	metaIdx    [2]int
	input      textinput.Model
	addingKind metaColumn

	// Reports.
	reportsList   list.Model
	reportsErr    error
	reportsLoaded bool
	openReport    string
	openErr       error
	reportBody    string
	viewport      viewport.Model
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if opts.Renderer == nil {
		opts.Renderer = reports.NewTerminalRenderer(reports.ResolveStyle(opts.Theme, ""))
	}
	m := appModel{
		ctx:      ctx,
		session:  opts.Session,
		viewer:   opts.Viewer,
		renderer: opts.Renderer,
		log:      opts.Logger,
		width:    100,
		height:   32,
		editor:   newEditorModel(),
	}

	m.input = textinput.New()
	m.input.Prompt = ""
	m.input.CharLimit = 64

	m.reportsList = list.New(nil, newCompactItemDelegate(), 0, 0)
	m.reportsList.SetShowTitle(false)
	m.reportsList.SetShowHelp(false)
	m.reportsList.SetShowStatusBar(false)
	m.reportsList.SetFilteringEnabled(false)
	m.reportsList.DisableQuitKeybindings()

	m.viewport = viewport.New(0, 0)
	m.resize()
	return m
}

func (m appModel) Init() tea.Cmd { return m.activateCmd() }

// activateCmd loads whatever the current tab shows.
func (m appModel) activateCmd() tea.Cmd {
	ctx := m.ctx
	switch m.tab {
	case tabMetadata:
		md := m.session.Metadata()
		return func() tea.Msg { return loadedMsg{err: md.Load(ctx)} }
	case tabReports:
		v := m.viewer
		return func() tea.Msg {
			entries, err := v.List(ctx)
			return reportsListMsg{entries: entries, err: err}
		}
	default:
		s := m.session
		return func() tea.Msg { return loadedMsg{err: s.Activate(ctx)} }
	}
}

// mutate runs fn in the background and reports its error as an actionDoneMsg.
func (m *appModel) mutate(fn func(ctx context.Context) error) tea.Cmd {
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg { return actionDoneMsg{err: fn(ctx)} }
}

func (m *appModel) setAlert(err error) {
	m.alert = dashboard.AlertMessage(err)
	if m.alert != "" {
		m.log.Warn().Err(err).Msg("action failed")
	}
}

func (m appModel) bodyHeight() int {
	// tab bar + alert line + help line
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m *appModel) resize() {
	listW := m.width / 3
	if listW < 16 {
		listW = 16
	}
	m.reportsList.SetSize(listW, m.bodyHeight())
	m.viewport.Width = m.width - listW - 1
	m.viewport.Height = m.bodyHeight()
	m.editor.setWidth(modalBodyWidth(modalWidth(m.width)))
	m.input.Width = modalBodyWidth(modalWidth(m.width)) - 2
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.openReport != "" {
			m.renderReport()
		}
		return m, nil

	case loadedMsg:
		// Load failures are shown inline from the snapshot.
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("load failed")
		}
		m.clampSelection()
		return m, nil

	case actionDoneMsg:
		m.busy = false
		m.setAlert(msg.err)
		m.clampSelection()
		return m, nil

	case savedMsg:
		m.editor.submitting = false
		if msg.err != nil {
			m.setAlert(msg.err)
			return m, nil
		}
		if m.session.Editor().Mode() == dashboard.EditorIdle {
			m.modal = modalNone
		}
		m.clampSelection()
		return m, nil

	case reportsListMsg:
		return m, m.applyReportsList(msg)

	case reportOpenedMsg:
		m.applyReport(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		if m.tagMode {
			return m.updateTagMode(msg)
		}
		m.alert = ""
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "1", "2", "3":
			return m.switchTab(tab(msg.String()[0] - '1'))
		case "tab":
			return m.switchTab((m.tab + 1) % tab(len(tabTitles)))
		case "shift+tab":
			return m.switchTab((m.tab + tab(len(tabTitles)) - 1) % tab(len(tabTitles)))
		case "r":
			return m, m.activateCmd()
		}
		switch m.tab {
		case tabMetadata:
			return m.updateMetadata(msg)
		case tabReports:
			return m.updateReports(msg)
		default:
			return m.updateDashboard(msg)
		}
	}

	if m.modal == modalEditor {
		return m.updateEditor(msg)
	}
	return m, nil
}

func (m appModel) switchTab(t tab) (tea.Model, tea.Cmd) {
	m.tab = t
	return m, m.activateCmd()
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalEditor:
		return m.updateEditor(msg)
	case modalConfirmDelete:
		return m.updateConfirmDelete(msg)
	case modalAddMetadata:
		return m.updateAddMetadata(msg)
	}
	return m, nil
}

func (m appModel) View() string {
	body := ""
	switch m.tab {
	case tabMetadata:
		body = m.viewMetadata()
	case tabReports:
		body = m.viewReports()
	default:
		body = m.viewDashboard()
	}
	body = normalizePane(body, m.width, m.bodyHeight())

	switch m.modal {
	case modalEditor:
		body = placeModal(m.width, m.bodyHeight(), m.viewEditor())
	case modalConfirmDelete:
		tp, _ := m.session.Touchpoints().Find(m.deleteID)
		body = placeModal(m.width, m.bodyHeight(), renderDeleteConfirm(
			modalWidth(m.width), tp, m.session.Snapshot().Metadata, m.session.Now().Location(), m.confirmFocus))
	case modalAddMetadata:
		body = placeModal(m.width, m.bodyHeight(), m.viewAddMetadata())
	}

	return strings.Join([]string{
		m.viewTabBar(),
		body,
		m.viewAlert(),
		m.viewHelp(),
	}, "\n")
}

func (m appModel) viewTabBar() string {
	parts := make([]string, 0, len(tabTitles))
	for i, title := range tabTitles {
		label := " " + string(rune('1'+i)) + " " + title + " "
		if tab(i) == m.tab {
			parts = append(parts, lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Bold(true).Render(label))
		} else {
			parts = append(parts, styleChrome().Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if m.busy {
		bar += styleMuted().Render("  working…")
	}
	return normalizePane(bar, m.width, 1)
}

func (m appModel) viewAlert() string {
	if m.alert == "" {
		return normalizePane("", m.width, 1)
	}
	st := lipgloss.NewStyle().Foreground(colorAlertFg).Background(colorAlertBg).Bold(true).Padding(0, 1)
	return normalizePane(st.Render(m.alert), m.width, 1)
}

func (m appModel) viewHelp() string {
	help := ""
	switch {
	case m.modal == modalEditor:
		help = "tab: next field   ←/→: choose   space: toggle tag   ctrl+s: save   esc: cancel"
	case m.modal != modalNone:
		help = "enter: confirm   esc: cancel"
	case m.tagMode:
		help = "←/→: move   space: toggle tag   esc/enter: done"
	case m.tab == tabMetadata:
		help = "←/→: column   ↑/↓: select   a: add   x: remove   r: reload   q: quit"
	case m.tab == tabReports:
		help = "↑/↓: select   enter: open   pgup/pgdn: scroll   r: reload   q: quit"
	default:
		help = "c: category   t: tags   d: range   n: new   e: edit   x: delete   r: reload   q: quit"
	}
	return normalizePane(styleMuted().Render(help), m.width, 1)
}

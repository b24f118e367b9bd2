package tui

import (
	"errors"

	"ohara-cli/internal/reports"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *appModel) applyReportsList(msg reportsListMsg) tea.Cmd {
	m.reportsLoaded = true
	m.reportsErr = msg.err
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("list reports failed")
		return m.reportsList.SetItems(nil)
	}
	return m.setReportItems(msg.entries)
}

func (m *appModel) setReportItems(entries []reports.Entry) tea.Cmd {
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, reportItem{entry: e, open: e.Filename == m.openReport})
	}
	return m.reportsList.SetItems(items)
}

func (m appModel) updateReports(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		it, ok := m.reportsList.SelectedItem().(reportItem)
		if !ok {
			return m, nil
		}
		v, ctx, filename := m.viewer, m.ctx, it.entry.Filename
		return m, func() tea.Msg {
			r, err := v.Open(ctx, filename)
			return reportOpenedMsg{report: r, err: err}
		}
	case "pgup", "pgdown", "ctrl+u", "ctrl+d", "J", "K":
		key := msg
		switch msg.String() {
		case "J":
			key = tea.KeyMsg{Type: tea.KeyDown}
		case "K":
			key = tea.KeyMsg{Type: tea.KeyUp}
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}
	var cmd tea.Cmd
	m.reportsList, cmd = m.reportsList.Update(msg)
	return m, cmd
}

func (m *appModel) applyReport(msg reportOpenedMsg) {
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("open report failed")
		m.openReport = ""
		m.reportBody = ""
		m.openErr = msg.err
		m.viewport.SetContent(errorStyle().Render(loadErrorText(msg.err)))
		m.viewport.GotoTop()
		return
	}
	m.openErr = nil
	m.openReport = msg.report.Filename
	m.reportBody = msg.report.Markdown
	m.renderReport()
	m.viewport.GotoTop()

	entries := make([]reports.Entry, 0, len(m.reportsList.Items()))
	for _, it := range m.reportsList.Items() {
		if ri, ok := it.(reportItem); ok {
			entries = append(entries, ri.entry)
		}
	}
	m.setReportItems(entries)
}

// renderReport renders the open report for the current viewport width. A
// rendering failure stays inside the content pane.
func (m *appModel) renderReport() {
	out, err := m.renderer.Render(m.reportBody, m.viewport.Width)
	if err != nil {
		m.log.Warn().Err(err).Str("report", m.openReport).Msg("render report failed")
		out = errorStyle().Render("Failed to render report: " + err.Error())
	}
	m.viewport.SetContent(out)
}

func loadErrorText(err error) string {
	var le *reports.LoadError
	if errors.As(err, &le) {
		return le.Error()
	}
	return (&reports.LoadError{Err: err}).Error()
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAlertBg).Bold(true)
}

func (m appModel) viewReports() string {
	h := m.bodyHeight()
	listW := m.reportsList.Width()
	contentW := m.width - listW - 1

	var left string
	switch {
	case !m.reportsLoaded:
		left = styleMuted().Render("Loading…")
	case m.reportsErr != nil:
		left = errorStyle().Render(reports.ListFailedMessage)
	case len(m.reportsList.Items()) == 0:
		left = styleMuted().Render(reports.EmptyListMessage)
	default:
		left = m.reportsList.View()
	}

	right := m.viewport.View()
	if m.openReport == "" && m.openErr == nil {
		right = styleMuted().Render("Select a report and press enter.")
	}
	return joinColumns(left, right, listW, contentW, h)
}

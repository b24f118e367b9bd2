package tui

import (
	"context"
	"strings"

	"ohara-cli/internal/dashboard"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	filterBarHeight = 2
	timelineHeight  = dashboard.TimelineMonths + 2
	minListHeight   = 3
)

func (m appModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.session.Render().Rows
	switch msg.String() {
	case "up", "k":
		if m.rowIdx > 0 {
			m.rowIdx--
		}
	case "down", "j":
		if m.rowIdx < len(rows)-1 {
			m.rowIdx++
		}
	case "home", "g":
		m.rowIdx = 0
	case "end", "G":
		m.rowIdx = len(rows) - 1
	case "c":
		m.cycleCategory(1)
	case "C":
		m.cycleCategory(-1)
	case "d":
		m.session.CycleDateRange()
	case "t":
		if len(m.session.Snapshot().Metadata.Tags) > 0 {
			m.tagMode = true
		}
	case "n":
		m.session.BeginCreate()
		m.openEditor()
	case "e", "enter":
		if row, ok := m.selectedRow(rows); ok {
			if err := m.session.BeginEdit(row.ID); err != nil {
				m.setAlert(err)
				return m, nil
			}
			m.openEditor()
		}
	case "x", "delete":
		if row, ok := m.selectedRow(rows); ok {
			m.deleteID = row.ID
			m.confirmFocus = confirmFocusCancel
			m.modal = modalConfirmDelete
		}
	}
	m.clampSelection()
	return m, nil
}

func (m appModel) selectedRow(rows []dashboard.Row) (dashboard.Row, bool) {
	if m.rowIdx < 0 || m.rowIdx >= len(rows) {
		return dashboard.Row{}, false
	}
	return rows[m.rowIdx], true
}

// cycleCategory moves the category filter by step through the select-list options.
func (m *appModel) cycleCategory(step int) {
	opts := m.session.Render().CategoryOptions
	cur := 0
	for i, o := range opts {
		if o.Selected {
			cur = i
			break
		}
	}
	next := (cur + step + len(opts)) % len(opts)
	m.session.SetCategory(opts[next].Name)
}

func (m appModel) updateTagMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tags := m.session.Snapshot().Metadata.Tags
	switch msg.String() {
	case "left", "h":
		if m.tagIdx > 0 {
			m.tagIdx--
		}
	case "right", "l":
		if m.tagIdx < len(tags)-1 {
			m.tagIdx++
		}
	case " ", "space":
		if m.tagIdx < len(tags) {
			m.session.ToggleTag(tags[m.tagIdx])
		}
	case "esc", "enter", "t":
		m.tagMode = false
	}
	m.clampSelection()
	return m, nil
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.modal = modalNone
		m.deleteID = ""
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = m.confirmFocus.toggle()
		return m, nil
	case "y":
		m.confirmFocus = confirmFocusConfirm
	case "enter":
	default:
		return m, nil
	}

	m.modal = modalNone
	id := m.deleteID
	m.deleteID = ""
	if m.confirmFocus != confirmFocusConfirm {
		return m, nil
	}
	s := m.session
	// The modal was the confirmation step.
	return m, m.mutate(func(ctx context.Context) error {
		return s.DeleteTouchpoint(ctx, id, dashboard.Confirmed)
	})
}

// clampSelection keeps the row cursor and tag cursor inside the current data.
func (m *appModel) clampSelection() {
	n := len(m.session.Filtered())
	if m.rowIdx >= n {
		m.rowIdx = n - 1
	}
	if m.rowIdx < 0 {
		m.rowIdx = 0
	}
	if tags := m.session.Snapshot().Metadata.Tags; m.tagIdx >= len(tags) {
		m.tagIdx = len(tags) - 1
		if m.tagIdx < 0 {
			m.tagIdx = 0
			m.tagMode = false
		}
	}
	if h := m.listHeight(); m.rowIdx < m.rowOff {
		m.rowOff = m.rowIdx
	} else if m.rowIdx >= m.rowOff+h {
		m.rowOff = m.rowIdx - h + 1
	}
	m.clampMetadata()
}

// listHeight is the number of touchpoint rows that fit on the dashboard.
func (m appModel) listHeight() int {
	h := m.bodyHeight() - filterBarHeight
	if h-timelineHeight >= minListHeight {
		h -= timelineHeight
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m appModel) viewDashboard() string {
	dm := m.session.Render()
	listH := m.listHeight()
	showTimeline := m.bodyHeight()-filterBarHeight-timelineHeight >= minListHeight

	parts := []string{m.viewFilterBar(dm), m.viewRows(dm, listH)}
	if showTimeline {
		parts = append(parts, "", renderTimeline(dm.Timeline, m.width))
	}
	return strings.Join(parts, "\n")
}

func (m appModel) viewFilterBar(dm dashboard.DisplayModel) string {
	label := styleChrome().Render

	category := "All categories"
	for _, o := range dm.CategoryOptions {
		if o.Selected && o.Name != "" {
			category = badgeStyle(o.Color).Render(o.Label)
		}
	}

	chips := make([]string, 0, len(dm.TagChips))
	for i, c := range dm.TagChips {
		chips = append(chips, chipStyle(c.Selected, m.tagMode && i == m.tagIdx).Render(c.Name))
	}
	tags := styleMuted().Render("none")
	if len(chips) > 0 {
		tags = strings.Join(chips, " ")
	}

	line1 := label("Category ") + category + label("   Range ") + dm.DateRange
	line2 := label("Tags ") + tags
	return normalizePane(line1+"\n"+line2, m.width, filterBarHeight)
}

func (m appModel) viewRows(dm dashboard.DisplayModel, height int) string {
	if dm.Message != "" {
		st := styleMuted()
		if dm.LoadFailed {
			st = lipgloss.NewStyle().Foreground(colorAlertBg).Bold(true)
		}
		return normalizePane("\n"+st.Render(dm.Message), m.width, height)
	}

	lines := make([]string, 0, height)
	for i := m.rowOff; i < len(dm.Rows) && len(lines) < height; i++ {
		lines = append(lines, m.renderRow(dm.Rows[i], i == m.rowIdx))
	}
	return normalizePane(strings.Join(lines, "\n"), m.width, height)
}

func (m appModel) renderRow(r dashboard.Row, selected bool) string {
	const dateW = 12
	badge := badgeStyle(r.Color).Render(r.Category)

	meta := make([]string, 0, len(r.Tags)+1)
	for _, t := range r.Tags {
		meta = append(meta, "#"+t)
	}
	if r.People != "" {
		meta = append(meta, r.People)
	}
	tail := ""
	if len(meta) > 0 {
		tail = "  " + styleMuted().Render(strings.Join(meta, "  "))
	}

	descW := m.width - dateW - lipgloss.Width(badge) - lipgloss.Width(tail) - 2
	if descW < 8 {
		descW = 8
	}
	desc := dashboard.TruncateDescription(r.Description, descW)

	line := padRight(styleChrome().Render(r.DateLabel), dateW) + badge + " " + desc + tail
	if selected {
		return styleSelected().Render(padRight(line, m.width))
	}
	return line
}

package tui

import (
	"context"
	"strings"

	"ohara-cli/internal/dashboard"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type metaColumn int

const (
	metaCategories metaColumn = iota
	metaTags
)

func (c metaColumn) noun() string {
	if c == metaTags {
		return "tag"
	}
	return "category"
}

func (m appModel) metaItems(col metaColumn) []string {
	md := m.session.Snapshot().Metadata
	if col == metaTags {
		return md.Tags
	}
	return md.Categories
}

func (m *appModel) clampMetadata() {
	for _, col := range []metaColumn{metaCategories, metaTags} {
		n := len(m.metaItems(col))
		if m.metaIdx[col] >= n {
			m.metaIdx[col] = n - 1
		}
		if m.metaIdx[col] < 0 {
			m.metaIdx[col] = 0
		}
	}
}

func (m appModel) updateMetadata(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.metaItems(m.metaCol)
	switch msg.String() {
	case "left", "h":
		m.metaCol = metaCategories
	case "right", "l":
		m.metaCol = metaTags
	case "up", "k":
		if m.metaIdx[m.metaCol] > 0 {
			m.metaIdx[m.metaCol]--
		}
	case "down", "j":
		if m.metaIdx[m.metaCol] < len(items)-1 {
			m.metaIdx[m.metaCol]++
		}
	case "a":
		m.addingKind = m.metaCol
		m.input.SetValue("")
		m.input.Placeholder = "new " + m.metaCol.noun()
		m.input.Focus()
		m.modal = modalAddMetadata
	case "x", "delete":
		idx := m.metaIdx[m.metaCol]
		if idx >= len(items) {
			return m, nil
		}
		name := items[idx]
		remove := m.session.RemoveCategory
		if m.metaCol == metaTags {
			remove = m.session.RemoveTag
		}
		return m, m.mutate(func(ctx context.Context) error { return remove(ctx, name) })
	}
	return m, nil
}

func (m appModel) updateAddMetadata(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.input.Blur()
		m.modal = modalNone
		return m, nil
	case "enter":
		name := m.input.Value()
		m.input.Blur()
		m.modal = modalNone
		add := m.session.AddCategory
		if m.addingKind == metaTags {
			add = m.session.AddTag
		}
		// Empty names are rejected by the store without a request.
		return m, m.mutate(func(ctx context.Context) error { return add(ctx, name) })
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) viewAddMetadata() string {
	width := modalWidth(m.width)
	bodyW := modalBodyWidth(width)
	title := "Add " + m.addingKind.noun()
	content := strings.Join([]string{
		renderInputLine(bodyW, m.input.View()),
		"",
		styleMuted().Width(bodyW).Render("enter: add   esc: cancel"),
	}, "\n")
	return renderModalBox(width, title, content)
}

func (m appModel) viewMetadata() string {
	snap := m.session.Snapshot()
	h := m.bodyHeight()
	if snap.MetadataErr != nil {
		msg := lipgloss.NewStyle().Foreground(colorAlertBg).Bold(true).Render(dashboard.LoadFailedMessage)
		return normalizePane("\n"+msg, m.width, h)
	}

	leftW := (m.width - 1) / 2
	rightW := m.width - 1 - leftW

	md := snap.Metadata
	cats := make([]string, 0, len(md.Categories))
	for _, c := range md.Categories {
		cats = append(cats, badgeStyle(dashboard.CategoryColor(c, md)).Render(c))
	}
	left := m.viewMetaColumn("Categories", metaCategories, cats, leftW)
	right := m.viewMetaColumn("Tags", metaTags, md.Tags, rightW)
	return joinColumns(left, right, leftW, rightW, h)
}

func (m appModel) viewMetaColumn(title string, col metaColumn, items []string, width int) string {
	header := styleChrome().Bold(true).Render(title)
	if col == m.metaCol {
		header = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(title)
	}
	lines := []string{header, styleMuted().Render(strings.Repeat("─", width))}
	if len(items) == 0 {
		lines = append(lines, styleMuted().Render("none"))
	}
	for i, it := range items {
		line := "  " + it
		if col == m.metaCol && i == m.metaIdx[col] {
			line = styleSelected().Render(padRight("▸ "+it, width))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

package tui

import (
	"fmt"
	"io"
	"strings"

	"ohara-cli/internal/reports"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// reportItem adapts a report entry to list.Item.
type reportItem struct {
	entry reports.Entry
	// open marks the report whose content is currently shown.
	open bool
}

func (i reportItem) FilterValue() string { return i.entry.Name }
func (i reportItem) Title() string       { return i.entry.Name }

// compactItemDelegate renders one item per line with a full-width selection bar.
type compactItemDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newCompactItemDelegate() compactItemDelegate {
	return compactItemDelegate{
		normal:   lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: styleSelected(),
	}
}

func (d compactItemDelegate) Height() int  { return 1 }
func (d compactItemDelegate) Spacing() int { return 0 }
func (d compactItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d compactItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	txt := fmt.Sprint(item)
	if t, ok := item.(interface{ Title() string }); ok {
		txt = t.Title()
	}
	marker := "  "
	if ri, ok := item.(reportItem); ok && ri.open {
		marker = "▸ "
	}

	line := marker + txt
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}
	fmt.Fprint(w, style.Render(line))
}

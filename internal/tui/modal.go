package tui

import (
	"github.com/charmbracelet/lipgloss"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalEditor
	modalConfirmDelete
	modalAddMetadata
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func (f confirmModalFocus) toggle() confirmModalFocus {
	if f == confirmFocusConfirm {
		return confirmFocusCancel
	}
	return confirmFocusConfirm
}

// modalWidth picks a modal width for a terminal of termW columns.
func modalWidth(termW int) int {
	w := termW - 8
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}

// modalBodyWidth is the usable content width inside a modal of the given width.
func modalBodyWidth(width int) int {
	w := width - 4
	if w < 10 {
		w = 10
	}
	return w
}

func renderModalBox(width int, title string, content string) string {
	header := lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Bold(true).
		Foreground(colorModalHeaderFg).
		Background(colorModalHeaderBg).
		Render(title)
	body := lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Foreground(colorModalSurfaceFg).
		Background(colorModalSurfaceBg).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// placeModal centers box over a width x height area.
func placeModal(width, height int, box string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws a single-line text input across bodyW columns.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}

	// Newlines in the view would wrap the modal while typing.
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Terminate styling so a cut escape sequence cannot bleed.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

// renderField renders a labelled form row; the label is highlighted when focused.
func renderField(label string, labelW int, focused bool, value string) string {
	st := styleChrome()
	if focused {
		st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, st.Width(labelW).Render(label), value)
}

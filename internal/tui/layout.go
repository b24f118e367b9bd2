package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall, so panes line up under lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		// Bound very long raw lines before measuring them.
		if width > 0 && len(ln) > 8192 {
			ln = cutWithEllipsis(ln, width)
		}
		w := xansi.StringWidth(ln)
		if w > width {
			ln = cutWithEllipsis(ln, width)
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

func cutWithEllipsis(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case width == 1:
		return xansi.Cut(s, 0, 1)
	default:
		return xansi.Cut(s, 0, width-1) + "…"
	}
}

// joinColumns lays out two panes side by side with a one-column gutter.
func joinColumns(left, right string, leftW, rightW, height int) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		normalizePane(left, leftW, height),
		" ",
		normalizePane(right, rightW, height),
	)
}

// padRight pads s with spaces to width display cells, truncating when longer.
func padRight(s string, width int) string {
	return normalizePane(s, width, 1)
}

package tui

import (
	"fmt"
	"strings"

	"ohara-cli/internal/dashboard"

	"github.com/charmbracelet/lipgloss"
)

const timelineLabelW = 9

// renderTimeline draws one row per month with a bar for each series, scaled to
// the peak across all three.
func renderTimeline(bs []dashboard.Bucket, width int) string {
	countSt := lipgloss.NewStyle().Foreground(colorSeriesCount)
	catSt := lipgloss.NewStyle().Foreground(colorSeriesCategories)
	tagSt := lipgloss.NewStyle().Foreground(colorSeriesTags)

	legend := styleChrome().Render("Timeline  ") +
		countSt.Render("■") + " touchpoints  " +
		catSt.Render("■") + " categories  " +
		tagSt.Render("■") + " tags"

	// Each series gets a bar plus a right-aligned 3-digit value.
	barW := (width-timelineLabelW)/3 - 5
	if barW < 1 {
		barW = 1
	}
	peak := dashboard.TimelinePeak(bs)

	lines := []string{legend}
	for _, b := range bs {
		lines = append(lines, padRight(styleChrome().Render(b.Label), timelineLabelW)+
			timelineBar(b.Count, peak, barW, countSt)+
			timelineBar(b.CategoryDiversity, peak, barW, catSt)+
			timelineBar(b.TagDiversity, peak, barW, tagSt))
	}
	return strings.Join(lines, "\n")
}

// timelineBar is exactly barW+5 cells wide. Non-zero values always get at least one cell.
func timelineBar(v, peak, barW int, st lipgloss.Style) string {
	n := 0
	if peak > 0 {
		n = v * barW / peak
		if v > 0 && n == 0 {
			n = 1
		}
	}
	return st.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barW-n) + fmt.Sprintf(" %3d ", v)
}

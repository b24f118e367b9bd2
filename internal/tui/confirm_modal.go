package tui

import (
	"strings"
	"time"

	"ohara-cli/internal/dashboard"
	"ohara-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// renderDeleteConfirm is the confirmation step before a touchpoint is deleted.
// tp may be zero when the row vanished after a reload; the prompt still shows.
func renderDeleteConfirm(width int, tp model.Touchpoint, md model.Metadata, loc *time.Location, focus confirmModalFocus) string {
	bodyW := modalBodyWidth(width)

	lines := []string{dashboard.DeletePrompt}
	if tp.ID != "" {
		badge := badgeStyle(dashboard.CategoryColor(tp.Category, md)).Render(tp.Category)
		head := styleMuted().Render(dashboard.ShortDate(tp.Date, loc)) + "  " + badge
		desc := dashboard.TruncateDescription(tp.Description, bodyW)
		lines = append(lines, "", head, desc)
	}

	// Plain buttons: bordered ones leave background artifacts inside the modal.
	btn := lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	active := btn.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	del, keep := btn, active
	if focus == confirmFocusConfirm {
		del, keep = active, btn
	}
	gap := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	lines = append(lines, "",
		lipgloss.JoinHorizontal(lipgloss.Top, del.Render("Delete"), gap, keep.Render("Keep")),
		"",
		styleMuted().Width(bodyW).Render("y: delete   n/esc: keep   tab: switch   enter: choose"),
	)
	return renderModalBox(width, "Delete touchpoint", strings.Join(lines, "\n"))
}

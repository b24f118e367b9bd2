package dashboard

import (
	"strings"
	"time"

	"ohara-cli/internal/model"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	EmptyMessage      = "No touchpoints yet."
	LoadFailedMessage = "Failed to load."
)

// Row actions.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// EditorState is a copy of the editor for rendering.
type EditorState struct {
	Mode      EditorMode
	EditingID string
	Form      Form
}

// RenderInput is everything Render reads. Zero DescriptionWidth means no truncation.
type RenderInput struct {
	Snapshot         Snapshot
	Filter           FilterState
	Editor           EditorState
	Now              time.Time
	DescriptionWidth int
}

// DisplayModel is the toolkit-independent view of the dashboard.
type DisplayModel struct {
	LoadFailed bool   `json:"loadFailed"`
	Message    string `json:"message,omitempty"`

	CategoryOptions []CategoryOption `json:"categoryOptions"`
	TagChips        []Chip           `json:"tagChips"`
	DateRange       string           `json:"dateRange"`
	DateRanges      []string         `json:"dateRanges"`

	Rows     []Row       `json:"rows"`
	Timeline []Bucket    `json:"timeline"`
	Editor   *EditorView `json:"editor,omitempty"`
}

// CategoryOption is one select-list entry. The "All categories" option has Name "".
type CategoryOption struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Color    Color  `json:"color"`
	Selected bool   `json:"selected"`
}

type Chip struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Row is one rendered touchpoint.
type Row struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	DateLabel   string   `json:"dateLabel"`
	Category    string   `json:"category"`
	Color       Color    `json:"color"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	People      string   `json:"people,omitempty"`
	URL         string   `json:"url,omitempty"`
	Actions     []string `json:"actions"`
}

// EditorView is the open editor modal.
type EditorView struct {
	Mode       string   `json:"mode"`
	Title      string   `json:"title"`
	EditingID  string   `json:"editingId,omitempty"`
	Form       Form     `json:"form"`
	Categories []string `json:"categories"`
	TagChips   []Chip   `json:"tagChips"`
}

// Render is a pure function of its input. Selectors are built from the same
// snapshot as the rows so they never disagree.
func Render(in RenderInput) DisplayModel {
	snap := in.Snapshot
	md := snap.Metadata
	loc := in.Now.Location()

	dm := DisplayModel{
		LoadFailed: snap.LoadFailed(),
		DateRange:  in.Filter.Range.Label(),
		Rows:       []Row{},
	}
	for _, r := range DateRanges() {
		dm.DateRanges = append(dm.DateRanges, r.Label())
	}

	dm.CategoryOptions = append(dm.CategoryOptions, CategoryOption{
		Label:    "All categories",
		Selected: in.Filter.Category == "",
	})
	for _, c := range md.Categories {
		dm.CategoryOptions = append(dm.CategoryOptions, CategoryOption{
			Name:     c,
			Label:    c,
			Color:    CategoryColor(c, md),
			Selected: in.Filter.Category == c,
		})
	}
	dm.TagChips = []Chip{}
	for _, t := range md.Tags {
		dm.TagChips = append(dm.TagChips, Chip{Name: t, Selected: in.Filter.HasTag(t)})
	}

	filtered := Filter(snap.Touchpoints, in.Filter, in.Now)
	for _, tp := range filtered {
		dm.Rows = append(dm.Rows, renderRow(tp, md, loc, in.DescriptionWidth))
	}
	dm.Timeline = Timeline(filtered, in.Now)

	switch {
	case dm.LoadFailed:
		dm.Message = LoadFailedMessage
	case len(dm.Rows) == 0:
		dm.Message = EmptyMessage
	}

	if in.Editor.Mode != EditorIdle {
		dm.Editor = renderEditor(in.Editor, md)
	}
	return dm
}

func renderRow(tp model.Touchpoint, md model.Metadata, loc *time.Location, width int) Row {
	tags := tp.Tags
	if tags == nil {
		tags = []string{}
	}
	return Row{
		ID:          tp.ID,
		Date:        tp.Date,
		DateLabel:   ShortDate(tp.Date, loc),
		Category:    tp.Category,
		Color:       CategoryColor(tp.Category, md),
		Description: TruncateDescription(tp.Description, width),
		Tags:        tags,
		People:      strings.Join(tp.PeopleInvolved, ", "),
		URL:         tp.URL,
		Actions:     []string{ActionEdit, ActionDelete},
	}
}

// TruncateDescription keeps the first line of s and cuts it to width display
// cells with a trailing ellipsis. A width <= 0 keeps the whole first line.
func TruncateDescription(s string, width int) string {
	line, rest, multi := strings.Cut(strings.TrimSpace(s), "\n")
	line = strings.TrimRight(line, "\r ")
	if width <= 0 {
		if multi && strings.TrimSpace(rest) != "" {
			return line + "…"
		}
		return line
	}
	if multi && strings.TrimSpace(rest) != "" && xansi.StringWidth(line) < width {
		return line + "…"
	}
	return xansi.Truncate(line, width, "…")
}

func renderEditor(es EditorState, md model.Metadata) *EditorView {
	v := &EditorView{
		Mode:       es.Mode.String(),
		Title:      "New Touchpoint",
		Form:       es.Form,
		Categories: append([]string{}, md.Categories...),
		TagChips:   EditorTagChips(es.Form, md),
	}
	if es.Mode == EditorEditing {
		v.Title = "Edit Touchpoint"
		v.EditingID = es.EditingID
	}
	// A touchpoint whose category left the vocabulary still offers it.
	if es.Form.Category != "" && !md.HasCategory(es.Form.Category) {
		v.Categories = append(v.Categories, es.Form.Category)
	}
	return v
}

// EditorTagChips lists the vocabulary tags followed by any selected tags that
// are no longer in the vocabulary, so editing never silently drops them.
func EditorTagChips(f Form, md model.Metadata) []Chip {
	chips := make([]Chip, 0, len(md.Tags))
	for _, t := range md.Tags {
		chips = append(chips, Chip{Name: t, Selected: f.HasTag(t)})
	}
	for _, t := range f.Tags {
		if !md.HasTag(t) {
			chips = append(chips, Chip{Name: t, Selected: true})
		}
	}
	return chips
}

package tui

import (
	"strings"

	"ohara-cli/internal/dashboard"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type editorField int

const (
	fieldDescription editorField = iota
	fieldCategory
	fieldTags
	fieldPeople
	fieldURL
	editorFieldCount
)

const editorLabelW = 13

// editorModel holds the text widgets of the editor modal. The form itself
// lives in the session's Editor; widgets push their values into it on change.
type editorModel struct {
	focus       editorField
	description textarea.Model
	people      textinput.Model
	url         textinput.Model
	tagIdx      int
	submitting  bool
}

func newEditorModel() editorModel {
	e := editorModel{
		description: textarea.New(),
		people:      textinput.New(),
		url:         textinput.New(),
	}
	e.description.ShowLineNumbers = false
	e.description.Placeholder = "What happened?"
	e.description.SetHeight(4)
	e.people.Prompt = ""
	e.people.Placeholder = "Alice, Bob"
	e.url.Prompt = ""
	e.url.Placeholder = "https://"
	return e
}

func (e *editorModel) setWidth(w int) {
	e.description.SetWidth(w)
	e.people.Width = w - editorLabelW - 2
	e.url.Width = w - editorLabelW - 2
}

// load seeds the widgets from f and focuses the description.
func (e *editorModel) load(f dashboard.Form) {
	e.description.SetValue(f.Description)
	e.people.SetValue(f.People)
	e.url.SetValue(f.URL)
	e.tagIdx = 0
	e.submitting = false
	e.setFocus(fieldDescription)
}

func (e *editorModel) setFocus(f editorField) {
	e.focus = f
	e.description.Blur()
	e.people.Blur()
	e.url.Blur()
	switch f {
	case fieldDescription:
		e.description.Focus()
	case fieldPeople:
		e.people.Focus()
	case fieldURL:
		e.url.Focus()
	}
}

func (m *appModel) openEditor() {
	m.editor.load(m.session.Editor().Form())
	m.modal = modalEditor
	m.alert = ""
}

// syncEditor copies widget text into the session form.
func (m *appModel) syncEditor() {
	desc, people, url := m.editor.description.Value(), m.editor.people.Value(), m.editor.url.Value()
	m.session.Editor().Update(func(f *dashboard.Form) {
		f.Description = desc
		f.People = people
		f.URL = url
	})
}

func (m appModel) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch key.String() {
		case "esc":
			m.session.CancelEditor()
			m.modal = modalNone
			m.alert = ""
			return m, nil
		case "ctrl+s":
			return m.submitEditor()
		case "tab":
			m.editor.setFocus((m.editor.focus + 1) % editorFieldCount)
			return m, nil
		case "shift+tab":
			m.editor.setFocus((m.editor.focus + editorFieldCount - 1) % editorFieldCount)
			return m, nil
		}
		m.alert = ""
	}

	view := m.session.Render().Editor
	if view == nil {
		m.modal = modalNone
		return m, nil
	}

	var cmd tea.Cmd
	switch m.editor.focus {
	case fieldDescription:
		m.editor.description, cmd = m.editor.description.Update(msg)
	case fieldPeople:
		m.editor.people, cmd = m.editor.people.Update(msg)
	case fieldURL:
		m.editor.url, cmd = m.editor.url.Update(msg)
	case fieldCategory:
		if isKey {
			m.stepCategory(view.Categories, key.String())
		}
	case fieldTags:
		if isKey {
			m.stepEditorTag(view.TagChips, key.String())
		}
	}
	m.syncEditor()
	return m, cmd
}

func (m *appModel) stepCategory(options []string, key string) {
	if len(options) == 0 {
		return
	}
	step := 0
	switch key {
	case "left", "h", "up", "k":
		step = -1
	case "right", "l", "down", "j", " ", "space", "enter":
		step = 1
	default:
		return
	}
	cur := -1
	current := m.session.Editor().Form().Category
	for i, c := range options {
		if c == current {
			cur = i
		}
	}
	next := 0
	if cur >= 0 {
		next = (cur + step + len(options)) % len(options)
	} else if step < 0 {
		next = len(options) - 1
	}
	m.session.Editor().Update(func(f *dashboard.Form) { f.Category = options[next] })
}

func (m *appModel) stepEditorTag(chips []dashboard.Chip, key string) {
	switch key {
	case "left", "h":
		if m.editor.tagIdx > 0 {
			m.editor.tagIdx--
		}
	case "right", "l":
		if m.editor.tagIdx < len(chips)-1 {
			m.editor.tagIdx++
		}
	case " ", "space", "enter":
		if m.editor.tagIdx < len(chips) {
			m.session.Editor().ToggleTag(chips[m.editor.tagIdx].Name)
		}
	}
}

// submitEditor sends the form. An incomplete form is a silent no-op.
func (m appModel) submitEditor() (tea.Model, tea.Cmd) {
	if m.editor.submitting {
		return m, nil
	}
	m.syncEditor()
	if err := m.session.Editor().Form().Validate(); err != nil {
		return m, nil
	}
	m.editor.submitting = true
	s, ctx := m.session, m.ctx
	return m, func() tea.Msg {
		_, err := s.SubmitEditor(ctx)
		return savedMsg{err: err}
	}
}

func (m appModel) viewEditor() string {
	width := modalWidth(m.width)
	bodyW := modalBodyWidth(width)
	view := m.session.Render().Editor
	if view == nil {
		return ""
	}
	focus := m.editor.focus

	category := styleMuted().Render("‹ choose ›")
	if view.Form.Category != "" {
		c := dashboard.CategoryColor(view.Form.Category, m.session.Snapshot().Metadata)
		category = "‹ " + badgeStyle(c).Render(view.Form.Category) + " ›"
	}

	chips := make([]string, 0, len(view.TagChips))
	for i, c := range view.TagChips {
		chips = append(chips, chipStyle(c.Selected, focus == fieldTags && i == m.editor.tagIdx).Render(c.Name))
	}
	tags := styleMuted().Render("no tags defined")
	if len(chips) > 0 {
		tags = strings.Join(chips, " ")
	}

	inputW := bodyW - editorLabelW
	lines := []string{
		renderField("Description", editorLabelW, focus == fieldDescription, ""),
		m.editor.description.View(),
		"",
		renderField("Category", editorLabelW, focus == fieldCategory, category),
		renderField("Tags", editorLabelW, focus == fieldTags, normalizePane(tags, inputW, 1)),
		renderField("People", editorLabelW, focus == fieldPeople, renderInputLine(inputW, m.editor.people.View())),
		renderField("URL", editorLabelW, focus == fieldURL, renderInputLine(inputW, m.editor.url.View())),
		"",
		styleMuted().Render("ctrl+s: save   tab: next field   esc: cancel"),
	}
	if m.editor.submitting {
		lines[len(lines)-1] = styleMuted().Render("saving…")
	}
	return renderModalBox(width, view.Title, strings.Join(lines, "\n"))
}

package dashboard

import (
	"strings"
	"sync"

	"ohara-cli/internal/model"
)

// EditorMode is the editor state: Idle, Creating, or Editing a touchpoint.
type EditorMode int

const (
	EditorIdle EditorMode = iota
	EditorCreating
	EditorEditing
)

func (m EditorMode) String() string {
	switch m {
	case EditorCreating:
		return "creating"
	case EditorEditing:
		return "editing"
	default:
		return "idle"
	}
}

// Form holds the raw editor fields. People is the comma-separated text as typed.
type Form struct {
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	People      string   `json:"people"`
	URL         string   `json:"url"`
}

func (f Form) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate requires a non-blank description and a selected category.
func (f Form) Validate() error {
	if strings.TrimSpace(f.Description) == "" || f.Category == "" {
		return ErrIncompleteForm
	}
	return nil
}

// Input builds the request body from the form. Tags follow the chip order for
// md: vocabulary order first, then selected tags no longer in the vocabulary.
func (f Form) Input(md model.Metadata) model.TouchpointInput {
	tags := make([]string, 0, len(f.Tags))
	for _, c := range EditorTagChips(f, md) {
		if c.Selected {
			tags = append(tags, c.Name)
		}
	}
	return model.TouchpointInput{
		Description:    strings.TrimSpace(f.Description),
		Category:       f.Category,
		Tags:           tags,
		PeopleInvolved: SplitPeople(f.People),
		URL:            strings.TrimSpace(f.URL),
	}
}

// SplitPeople splits comma-separated names, trimming each and dropping empty
// pieces. Order is kept and duplicates are not removed.
func SplitPeople(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Editor is the single create/edit form. Only one exists per Session, which is
// what keeps two edits of the same record from overlapping.
type Editor struct {
	mu        sync.Mutex
	mode      EditorMode
	editingID string
	form      Form
	// gen counts open/close transitions so a late submit result cannot close a
	// form that was reopened in the meantime.
	gen int
}

func (e *Editor) Mode() EditorMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// EditingID is the touchpoint being edited, or "".
func (e *Editor) EditingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID
}

func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.form
	f.Tags = append([]string(nil), e.form.Tags...)
	return f
}

// Update edits the open form in place; it is a no-op while Idle.
func (e *Editor) Update(fn func(*Form)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == EditorIdle {
		return
	}
	fn(&e.form)
}

// ToggleTag flips tag in the form's selection.
func (e *Editor) ToggleTag(tag string) {
	e.Update(func(f *Form) {
		for i, t := range f.Tags {
			if t == tag {
				f.Tags = append(f.Tags[:i:i], f.Tags[i+1:]...)
				return
			}
		}
		f.Tags = append(f.Tags, tag)
	})
}

// BeginCreate enters Creating with all fields cleared.
func (e *Editor) BeginCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = EditorCreating
	e.editingID = ""
	e.form = Form{}
	e.gen++
}

// BeginEdit enters Editing(tp.ID) seeded from tp's current values.
func (e *Editor) BeginEdit(tp model.Touchpoint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = EditorEditing
	e.editingID = tp.ID
	e.form = Form{
		Description: tp.Description,
		Category:    tp.Category,
		Tags:        append([]string{}, tp.Tags...),
		People:      strings.Join(tp.PeopleInvolved, ", "),
		URL:         tp.URL,
	}
	e.gen++
}

// Cancel discards the form and returns to Idle.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Editor) reset() {
	e.mode = EditorIdle
	e.editingID = ""
	e.form = Form{}
	e.gen++
}

type submission struct {
	gen   int
	mode  EditorMode
	id    string
	input model.TouchpointInput
}

// prepare validates the open form and captures what to send.
func (e *Editor) prepare(md model.Metadata) (submission, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == EditorIdle {
		return submission{}, ErrEditorIdle
	}
	if err := e.form.Validate(); err != nil {
		return submission{}, err
	}
	return submission{gen: e.gen, mode: e.mode, id: e.editingID, input: e.form.Input(md)}, nil
}

// finish closes the form if it is still the one that was submitted.
func (e *Editor) finish(sub submission) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == sub.gen {
		e.reset()
	}
}

package model

// Touchpoint is one logged interaction as returned by the backing API.
//
// Date is kept as the raw wire string: the backend owns the format and a
// malformed value must still round-trip and render.
type Touchpoint struct {
	ID             string   `json:"id"`
	Date           string   `json:"date"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	PeopleInvolved []string `json:"people_involved"`
	URL            string   `json:"url"`
}

// TouchpointInput is the create/update request body. ID and Date are server-assigned.
type TouchpointInput struct {
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	PeopleInvolved []string `json:"people_involved"`
	URL            string   `json:"url"`
}

// Metadata is the controlled vocabulary. Order matters: it drives select-list
// order, tag chip order and category color assignment.
type Metadata struct {
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// EmptyMetadata is the vocabulary used when a load fails.
func EmptyMetadata() Metadata {
	return Metadata{Categories: []string{}, Tags: []string{}}
}

func (t Touchpoint) HasTag(tag string) bool {
	for _, x := range t.Tags {
		if x == tag {
			return true
		}
	}
	return false
}

// Input returns the editable fields of t as a request body.
func (t Touchpoint) Input() TouchpointInput {
	return TouchpointInput{
		Description:    t.Description,
		Category:       t.Category,
		Tags:           append([]string(nil), t.Tags...),
		PeopleInvolved: append([]string(nil), t.PeopleInvolved...),
		URL:            t.URL,
	}
}

func (m Metadata) HasCategory(name string) bool { return indexOf(m.Categories, name) >= 0 }
func (m Metadata) HasTag(name string) bool      { return indexOf(m.Tags, name) >= 0 }

// CategoryIndex returns the position of name in Categories, or -1.
func (m Metadata) CategoryIndex(name string) int { return indexOf(m.Categories, name) }

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}

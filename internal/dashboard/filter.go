package dashboard

import (
	"fmt"
	"sort"
	"time"

	"ohara-cli/internal/model"
)

// DateRange is a trailing window in days; AllTime disables date filtering.
type DateRange int

const AllTime DateRange = 0

// DateRanges lists the selectable ranges in cycle order.
func DateRanges() []DateRange {
	return []DateRange{AllTime, 7, 30, 90, 365}
}

func (r DateRange) Label() string {
	if r <= 0 {
		return "All time"
	}
	return fmt.Sprintf("Last %d days", int(r))
}

// Next returns the range after r in DateRanges order, wrapping around.
func (r DateRange) Next() DateRange {
	rs := DateRanges()
	for i, x := range rs {
		if x == r {
			return rs[(i+1)%len(rs)]
		}
	}
	return AllTime
}

// Cutoff is the start of the calendar day r days before now, in now's location.
func (r DateRange) Cutoff(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-int(r), 0, 0, 0, 0, now.Location())
}

// FilterState is the ephemeral list filter. Category "" means all categories.
type FilterState struct {
	Category string    `json:"category,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Range    DateRange `json:"days,omitempty"`
}

func (f FilterState) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ToggleTag adds or removes tag from the selection.
func (f *FilterState) ToggleTag(tag string) {
	for i, t := range f.Tags {
		if t == tag {
			f.Tags = append(f.Tags[:i:i], f.Tags[i+1:]...)
			return
		}
	}
	f.Tags = append(f.Tags, tag)
}

// Active reports whether any predicate is set.
func (f FilterState) Active() bool {
	return f.Category != "" || len(f.Tags) > 0 || f.Range > AllTime
}

// prune drops selections that are not in md. Called after every reload so that
// filter options never outlive the vocabulary they were picked from.
func (f FilterState) prune(md model.Metadata) FilterState {
	out := FilterState{Range: f.Range}
	if f.Category != "" && md.HasCategory(f.Category) {
		out.Category = f.Category
	}
	for _, t := range f.Tags {
		if md.HasTag(t) {
			out.Tags = append(out.Tags, t)
		}
	}
	return out
}

// Filter returns the touchpoints matching f, most recent first. It only removes
// elements. Equal dates keep store order; unparseable dates sort last.
func Filter(tps []model.Touchpoint, f FilterState, now time.Time) []model.Touchpoint {
	type entry struct {
		tp model.Touchpoint
		at time.Time
		ok bool
	}

	var cutoff time.Time
	dated := f.Range > AllTime
	if dated {
		cutoff = f.Range.Cutoff(now)
	}

	entries := make([]entry, 0, len(tps))
	for _, tp := range tps {
		at, ok := ParseDate(tp.Date, now.Location())
		if dated && (!ok || at.Before(cutoff)) {
			continue
		}
		if f.Category != "" && tp.Category != f.Category {
			continue
		}
		if len(f.Tags) > 0 && !matchesAnyTag(tp, f.Tags) {
			continue
		}
		entries = append(entries, entry{tp: tp, at: at, ok: ok})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.After(b.at)
	})

	out := make([]model.Touchpoint, len(entries))
	for i, e := range entries {
		out[i] = e.tp
	}
	return out
}

func matchesAnyTag(tp model.Touchpoint, tags []string) bool {
	for _, t := range tags {
		if tp.HasTag(t) {
			return true
		}
	}
	return false
}

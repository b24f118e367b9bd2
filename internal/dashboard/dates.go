package dashboard

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDate parses a touchpoint date. Zone-less values ("2024-02-01") are wall
// times in loc, so they keep their calendar day; a nil loc means UTC.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// ShortDate formats a touchpoint date for list rows ("Jan 2"). Unparseable
// dates are shown verbatim.
func ShortDate(s string, loc *time.Location) string {
	t, ok := ParseDate(s, loc)
	if !ok {
		return s
	}
	return t.Format("Jan 2")
}

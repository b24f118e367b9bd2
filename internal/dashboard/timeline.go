package dashboard

import (
	"time"

	"ohara-cli/internal/model"
)

// TimelineMonths is the size of the trailing window, current month included.
const TimelineMonths = 12

// Bucket is one calendar month of the timeline.
type Bucket struct {
	Month             string `json:"month"` // YYYY-MM
	Label             string `json:"label"` // "Jan '24"
	Count             int    `json:"count"`
	CategoryDiversity int    `json:"categoryDiversity"`
	TagDiversity      int    `json:"tagDiversity"`
}

// Timeline buckets tps into the TimelineMonths months ending at now's month,
// oldest first. Touchpoints outside the window, or with unparseable dates, are
// ignored. Months are evaluated in now's location.
func Timeline(tps []model.Touchpoint, now time.Time) []Bucket {
	loc := now.Location()
	first := time.Date(now.Year(), now.Month()-(TimelineMonths-1), 1, 0, 0, 0, 0, loc)

	buckets := make([]Bucket, TimelineMonths)
	index := make(map[string]int, TimelineMonths)
	cats := make([]map[string]struct{}, TimelineMonths)
	tags := make([]map[string]struct{}, TimelineMonths)
	for i := range buckets {
		m := first.AddDate(0, i, 0)
		key := m.Format("2006-01")
		buckets[i] = Bucket{Month: key, Label: m.Format("Jan '06")}
		index[key] = i
		cats[i] = map[string]struct{}{}
		tags[i] = map[string]struct{}{}
	}

	for _, tp := range tps {
		at, ok := ParseDate(tp.Date, loc)
		if !ok {
			continue
		}
		i, ok := index[at.Format("2006-01")]
		if !ok {
			continue
		}
		buckets[i].Count++
		cats[i][tp.Category] = struct{}{}
		for _, t := range tp.Tags {
			tags[i][t] = struct{}{}
		}
	}

	for i := range buckets {
		buckets[i].CategoryDiversity = len(cats[i])
		buckets[i].TagDiversity = len(tags[i])
	}
	return buckets
}

// TimelinePeak returns the largest value across all three series, for scaling charts.
func TimelinePeak(bs []Bucket) int {
	peak := 0
	for _, b := range bs {
		for _, v := range []int{b.Count, b.CategoryDiversity, b.TagDiversity} {
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}

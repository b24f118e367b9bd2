package dashboard_test

import (
	"testing"
	"time"

	"ohara-cli/internal/dashboard"
	"ohara-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_Buckets(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tps := []model.Touchpoint{
		{ID: "1", Date: "2024-01-15", Category: "Work", Tags: []string{"go"}},
		{ID: "2", Date: "2024-01-20T10:00:00Z", Category: "Personal", Tags: []string{"go", "docker"}},
		{ID: "3", Date: "2023-05-15", Category: "Work"},
		{ID: "4", Date: "2024-07-01", Category: "Work"},
		{ID: "5", Date: "garbage", Category: "Work"},
		{ID: "6", Date: "2024-06-01T00:00:00Z", Category: "Work", Tags: []string{"go"}},
	}

	bs := dashboard.Timeline(tps, now)
	require.Len(t, bs, dashboard.TimelineMonths)
	assert.Equal(t, "2023-07", bs[0].Month)
	assert.Equal(t, "Jul '23", bs[0].Label)
	assert.Equal(t, "2024-06", bs[11].Month)
	assert.Equal(t, "Jun '24", bs[11].Label)

	jan := bs[6]
	assert.Equal(t, "2024-01", jan.Month)
	assert.Equal(t, 2, jan.Count)
	assert.Equal(t, 2, jan.CategoryDiversity)
	assert.Equal(t, 2, jan.TagDiversity)

	assert.Equal(t, 1, bs[11].Count)

	total := 0
	for _, b := range bs {
		total += b.Count
	}
	assert.Equal(t, 3, total, "out-of-window and unparseable dates are ignored")
}

func TestTimeline_YearBoundary(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	bs := dashboard.Timeline(nil, now)
	require.Len(t, bs, 12)
	assert.Equal(t, "2023-02", bs[0].Month)
	assert.Equal(t, "2024-01", bs[11].Month)
	for _, b := range bs {
		assert.Zero(t, b.Count)
	}
}

func TestTimeline_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, loc)
	// 23:00 UTC on May 31 is already June 1 in UTC+10.
	bs := dashboard.Timeline([]model.Touchpoint{{Date: "2024-05-31T23:00:00Z"}}, now)
	assert.Equal(t, 1, bs[11].Count)
}

func TestTimeline_DateOnlyKeepsMonthWestOfUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, loc)
	bs := dashboard.Timeline([]model.Touchpoint{{Date: "2024-02-01", Category: "Work"}}, now)
	for _, b := range bs {
		if b.Month == "2024-02" {
			assert.Equal(t, 1, b.Count)
		} else {
			assert.Zero(t, b.Count, b.Month)
		}
	}
}

func TestTimelinePeak(t *testing.T) {
	bs := []dashboard.Bucket{
		{Count: 2, CategoryDiversity: 1, TagDiversity: 5},
		{Count: 4, CategoryDiversity: 3},
	}
	assert.Equal(t, 5, dashboard.TimelinePeak(bs))
	assert.Zero(t, dashboard.TimelinePeak(nil))
}

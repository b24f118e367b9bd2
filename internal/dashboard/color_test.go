package dashboard_test

import (
	"fmt"
	"testing"

	"ohara-cli/internal/dashboard"
	"ohara-cli/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCategoryColor(t *testing.T) {
	md := model.Metadata{Categories: []string{"Work", "Personal", "Community"}}

	assert.Equal(t, dashboard.Palette[0], dashboard.CategoryColor("Work", md))
	assert.Equal(t, dashboard.Palette[1], dashboard.CategoryColor("Personal", md))
	assert.Equal(t, dashboard.Palette[2], dashboard.CategoryColor("Community", md))
	assert.Equal(t, dashboard.CategoryColor("Personal", md), dashboard.CategoryColor("Personal", md))

	// Unknown categories fall back to the first color.
	assert.Equal(t, dashboard.Palette[0], dashboard.CategoryColor("Gone", md))
	assert.Equal(t, dashboard.Palette[0], dashboard.CategoryColor("Gone", model.EmptyMetadata()))
}

func TestCategoryColor_WrapsPalette(t *testing.T) {
	var md model.Metadata
	for i := 0; i <= len(dashboard.Palette); i++ {
		md.Categories = append(md.Categories, fmt.Sprintf("c%d", i))
	}
	last := md.Categories[len(dashboard.Palette)]
	assert.Equal(t, dashboard.CategoryColor("c0", md), dashboard.CategoryColor(last, md))
}

func TestPalette_Distinct(t *testing.T) {
	assert.GreaterOrEqual(t, len(dashboard.Palette), 12)
	seen := map[string]bool{}
	for _, c := range dashboard.Palette {
		assert.False(t, seen[c.Bg], c.Bg)
		seen[c.Bg] = true
	}
}

package reports_test

import (
	"testing"

	"ohara-cli/internal/reports"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalRenderer(t *testing.T) {
	r := reports.NewTerminalRenderer("dark")

	out, err := r.Render("# Weekly\n\nSome text here\n\n```mermaid\ngraph TD\n```\n", 60)
	require.NoError(t, err)
	plain := xansi.Strip(out)
	assert.Contains(t, plain, "Weekly")
	assert.Contains(t, plain, "Some text here")
	assert.Contains(t, plain, "mermaid diagram")
	assert.Contains(t, plain, "graph TD")

	again, err := r.Render("# Weekly\n\nSome text here\n\n```mermaid\ngraph TD\n```\n", 60)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	empty, err := r.Render("  \n", 60)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestResolveStyle(t *testing.T) {
	assert.Equal(t, "light", reports.ResolveStyle("dark", "light"))
	assert.Equal(t, "dark", reports.ResolveStyle("dark", ""))
	assert.Equal(t, "light", reports.ResolveStyle("light", "auto"))

	t.Setenv("COLORFGBG", "0;15")
	assert.Equal(t, "light", reports.ResolveStyle("auto", ""))
	t.Setenv("COLORFGBG", "15;0")
	assert.Equal(t, "dark", reports.ResolveStyle("auto", ""))

	assert.Equal(t, "dark", reports.NewTerminalRenderer("nonsense").Style())
}

package reports_test

import (
	"testing"

	"ohara-cli/internal/reports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLRenderer_Render(t *testing.T) {
	r := reports.NewHTMLRenderer(nil)

	out, err := r.Render("# Weekly\n\nHello **team** :smile:\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>team</strong>")
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, ":smile:")
}

func TestHTMLRenderer_DropsRawHTML(t *testing.T) {
	r := reports.NewHTMLRenderer(nil)
	out, err := r.Render("before\n\n<script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "before")
}

func TestHTMLRenderer_HighlightsCode(t *testing.T) {
	r := reports.NewHTMLRenderer(nil)
	out, err := r.Render("```go\nfunc main() {}\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, `class="chroma"`)
	assert.Contains(t, out, `class="kd"`)
	assert.Contains(t, out, "main")

	// No language: detected or plain, never dropped.
	out, err = r.Render("```\nplain words\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, "plain words")
}

func TestHTMLRenderer_DiagramBlocksAreOpaque(t *testing.T) {
	r := reports.NewHTMLRenderer(nil)
	out, err := r.Render("Intro\n\n```mermaid\ngraph TD\n  A-->B\n```\n\nOutro\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="mermaid">graph TD`)
	assert.Contains(t, out, "A--&gt;B")
	assert.NotContains(t, out, `class="chroma"`)
	assert.Contains(t, out, "Outro")
}

func TestHTMLRenderer_Document(t *testing.T) {
	r := reports.NewHTMLRenderer(nil)
	doc := r.Document("Q1 <review>", "<p>x</p>")
	assert.Contains(t, doc, "<title>Q1 &lt;review&gt;</title>")
	assert.Contains(t, doc, ".chroma")
	assert.Contains(t, doc, "<p>x</p>")
}

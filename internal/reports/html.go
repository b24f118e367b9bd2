package reports

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// DiagramClass marks the opaque diagram blocks left by phase 1.
const DiagramClass = "mermaid"

// diagramLanguages are fence languages kept as diagram source instead of highlighted.
var diagramLanguages = map[string]bool{"mermaid": true}

// HTMLRenderer is phase 1 of report rendering: Markdown to sanitised HTML, with
// diagram fences left as <div class="mermaid"> blocks holding their source.
type HTMLRenderer struct {
	md        goldmark.Markdown
	policy    *bluemonday.Policy
	highlight *Highlighter
}

func NewHTMLRenderer(h *Highlighter) *HTMLRenderer {
	if h == nil {
		h = NewHighlighter(DefaultHighlightStyle)
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			emoji.Emoji,
		),
		goldmark.WithRendererOptions(
			// Raw HTML stays disabled: no html.WithUnsafe().
			renderer.WithNodeRenderers(util.Prioritized(&fencedCodeRenderer{highlight: h}, 100)),
		),
	)
	return &HTMLRenderer{md: md, policy: reportPolicy(), highlight: h}
}

func reportPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w\- ]+$`)).OnElements("div", "span", "pre", "code")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	return p
}

// Render converts src. A conversion failure falls back to the escaped source in
// a <pre> block and is reported alongside it.
func (r *HTMLRenderer) Render(src string) (string, error) {
	var b bytes.Buffer
	if err := r.md.Convert([]byte(src), &b); err != nil {
		return "<pre>" + html.EscapeString(src) + "</pre>", fmt.Errorf("render markdown: %w", err)
	}
	return r.policy.Sanitize(b.String()), nil
}

// Document wraps a rendered body in a standalone page with highlight CSS.
func (r *HTMLRenderer) Document(title, body string) string {
	var css strings.Builder
	_ = r.highlight.WriteCSS(&css)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	b.WriteString("<style>\n" + css.String() + "</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

type fencedCodeRenderer struct {
	highlight *Highlighter
}

func (r *fencedCodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *fencedCodeRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := strings.ToLower(string(n.Language(source)))

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if diagramLanguages[lang] {
		fmt.Fprintf(w, "<div class=\"%s\">%s</div>\n", DiagramClass, html.EscapeString(code.String()))
		return ast.WalkSkipChildren, nil
	}

	var out bytes.Buffer
	if err := r.highlight.Highlight(&out, code.String(), lang); err != nil {
		fmt.Fprintf(w, "<pre><code>%s</code></pre>\n", html.EscapeString(code.String()))
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.Write(out.Bytes())
	return ast.WalkSkipChildren, nil
}

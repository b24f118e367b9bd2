package reports

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used for generated CSS.
const DefaultHighlightStyle = "catppuccin-mocha"

// Highlighter renders code blocks to class-annotated HTML with chroma.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func NewHighlighter(style string) *Highlighter {
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	return &Highlighter{
		style:     s,
		formatter: chromahtml.New(chromahtml.WithClasses(true), chromahtml.TabWidth(4)),
	}
}

// lexerFor picks the fence language, else detects it from the code.
func lexerFor(lang, code string) chroma.Lexer {
	var l chroma.Lexer
	if lang = strings.TrimSpace(lang); lang != "" {
		l = lexers.Get(lang)
	}
	if l == nil {
		l = lexers.Analyse(code)
	}
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// Highlight writes code as highlighted HTML.
func (h *Highlighter) Highlight(w io.Writer, code, lang string) error {
	it, err := lexerFor(lang, code).Tokenise(nil, code)
	if err != nil {
		return err
	}
	return h.formatter.Format(w, h.style, it)
}

// WriteCSS writes the stylesheet for the highlight classes.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}

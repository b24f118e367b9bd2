package reports

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

// TerminalRenderer renders reports for a terminal with glamour. Renderers are
// cached per style and wrap width.
type TerminalRenderer struct {
	style string

	mu        sync.Mutex
	renderers map[string]*glamour.TermRenderer
}

// NewTerminalRenderer takes a style from ResolveStyle ("dark" or "light").
func NewTerminalRenderer(style string) *TerminalRenderer {
	if style != "light" {
		style = "dark"
	}
	return &TerminalRenderer{style: style, renderers: map[string]*glamour.TermRenderer{}}
}

func (t *TerminalRenderer) Style() string { return t.style }

// ResolveStyle picks the markdown style: an explicit markdown style wins, then
// the TUI theme, then COLORFGBG, then the terminal's reported background.
// Avoids glamour's auto style, which can block on terminal queries.
func ResolveStyle(theme, markdownStyle string) string {
	for _, v := range []string{markdownStyle, theme} {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "light":
			return "light"
		case "dark":
			return "dark"
		}
	}
	// COLORFGBG is often "fg;bg" (e.g. "15;0" => dark bg).
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if termenv.NewOutput(os.Stdout).HasDarkBackground() {
		return "dark"
	}
	return "light"
}

var diagramFence = regexp.MustCompile("(?m)^([ \t]*)(```+|~~~+)[ \t]*mermaid[ \t]*$")

// Render renders md wrapped at width. Diagram fences stay as source blocks with a
// label. On failure the raw Markdown is returned with the error.
func (t *TerminalRenderer) Render(md string, width int) (string, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	if width < 10 {
		width = 10
	}
	r, err := t.renderer(width)
	if err != nil {
		return md, err
	}
	out, err := r.Render(diagramFence.ReplaceAllString(md, "${1}*mermaid diagram*\n\n${1}${2}mermaid"))
	if err != nil {
		return md, err
	}
	return strings.TrimRight(out, "\n"), nil
}

func (t *TerminalRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	key := t.style + ":" + strconv.Itoa(width)

	t.mu.Lock()
	defer t.mu.Unlock()
	if r := t.renderers[key]; r != nil {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styleConfig(t.style)),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, err
	}
	t.renderers[key] = r
	return r, nil
}

func styleConfig(style string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	text, accent := "#cdd6f4", "#89b4fa"
	if style == "light" {
		cfg = styles.LightStyleConfig
		text, accent = "#4c4f69", "#1e66f5"
	}

	for _, h := range []*ansi.StyleBlock{&cfg.Heading, &cfg.H1, &cfg.H2, &cfg.H3, &cfg.H4, &cfg.H5, &cfg.H6} {
		h.Color = strPtr(text)
	}
	cfg.Link.Color = strPtr(accent)
	cfg.Link.Underline = boolPtr(true)
	cfg.LinkText.Color = strPtr(accent)
	cfg.Text.Color = strPtr(text)
	cfg.BlockQuote.Faint = boolPtr(false)
	return cfg
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// DiagramRenderer turns one diagram's source into SVG markup.
type DiagramRenderer interface {
	RenderDiagram(ctx context.Context, kind, source string) (string, error)
}

// DiagramFunc adapts a function to DiagramRenderer.
type DiagramFunc func(ctx context.Context, kind, source string) (string, error)

func (f DiagramFunc) RenderDiagram(ctx context.Context, kind, source string) (string, error) {
	return f(ctx, kind, source)
}

// DiagramError is a failure confined to one diagram block.
type DiagramError struct {
	Index  int
	Source string
	Err    error
}

func (e DiagramError) Error() string { return fmt.Sprintf("diagram %d: %v", e.Index+1, e.Err) }

// DiagramResult is the output of phase 2.
type DiagramResult struct {
	HTML     string
	Rendered int
	Failed   []DiagramError
}

// RenderDiagrams is phase 2: it finds the diagram blocks in phase-1 HTML and
// replaces each with its rendered SVG. A failing block is replaced by a local
// error message; the rest of the document is kept. The returned error is only
// set when the HTML could not be processed at all, in which case the input is
// returned unchanged.
func RenderDiagrams(ctx context.Context, in string, r DiagramRenderer) (DiagramResult, error) {
	res := DiagramResult{HTML: in}
	if r == nil {
		return res, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in))
	if err != nil {
		return res, fmt.Errorf("parse report html: %w", err)
	}

	blocks := doc.Find("div." + DiagramClass)
	if blocks.Length() == 0 {
		return res, nil
	}
	blocks.Each(func(i int, s *goquery.Selection) {
		src := s.Text()
		svg, err := r.RenderDiagram(ctx, DiagramClass, src)
		if err == nil {
			svg, err = cleanSVG(svg)
		}
		if err != nil {
			res.Failed = append(res.Failed, DiagramError{Index: i, Source: src, Err: err})
			s.ReplaceWithHtml(`<div class="diagram-error">Failed to render diagram: ` + html.EscapeString(err.Error()) + `</div>`)
			return
		}
		s.SetHtml(svg)
		s.AddClass("rendered")
		res.Rendered++
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return DiagramResult{HTML: in}, fmt.Errorf("serialize report html: %w", err)
	}
	res.HTML = out
	return res, nil
}

// svgPolicy keeps the drawing vocabulary of rendered diagrams. Event handlers,
// scripts and non-http(s) links are dropped.
var svgPolicy = newSVGPolicy()

func newSVGPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowURLSchemes("http", "https")

	// Names are lowercased by the HTML tokenizer; browsers restore SVG casing.
	p.AllowElements(
		"svg", "g", "defs", "symbol", "marker", "title", "desc",
		"path", "rect", "circle", "ellipse", "line", "polyline", "polygon",
		"text", "tspan", "textpath", "clippath", "mask", "pattern",
		"lineargradient", "radialgradient", "stop", "foreignobject",
		"div", "span", "p", "br", "b", "i", "em", "strong",
	)
	p.AllowNoAttrs().OnElements("svg", "g", "defs", "text", "tspan", "title", "desc", "foreignobject")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs(
		"id", "class", "transform", "viewbox", "width", "height", "x", "y", "x1", "y1", "x2", "y2",
		"cx", "cy", "r", "rx", "ry", "d", "points", "dx", "dy", "fill", "fill-opacity", "fill-rule",
		"stroke", "stroke-width", "stroke-dasharray", "stroke-linecap", "stroke-linejoin", "stroke-opacity",
		"opacity", "font-size", "font-family", "font-weight", "text-anchor", "dominant-baseline",
		"alignment-baseline", "marker-start", "marker-mid", "marker-end", "markerwidth", "markerheight",
		"markerunits", "refx", "refy", "orient", "offset", "stop-color", "stop-opacity",
		"gradientunits", "preserveaspectratio", "xmlns", "role", "aria-label", "clip-path",
	).Globally()
	p.AllowStyles(
		"fill", "stroke", "stroke-width", "stroke-dasharray", "opacity", "color",
		"font-size", "font-family", "font-weight", "text-anchor", "display", "max-width",
		"text-align", "white-space", "line-height",
	).Globally()
	return p
}

// cleanSVG sanitizes renderer output and rejects non-SVG payloads.
func cleanSVG(svg string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(svgPolicy.Sanitize(svg)))
	if err != nil {
		return "", err
	}
	root := doc.Find("svg").First()
	if root.Length() == 0 {
		return "", errors.New("renderer returned no svg")
	}
	return goquery.OuterHtml(root)
}

// KrokiRenderer renders diagrams through a Kroki-compatible HTTP service
// (POST {base}/{kind}/svg with the source as the body).
type KrokiRenderer struct {
	BaseURL string
	Client  *http.Client
}

func NewKrokiRenderer(baseURL string, timeout time.Duration) *KrokiRenderer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KrokiRenderer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (k *KrokiRenderer) RenderDiagram(ctx context.Context, kind, source string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.BaseURL+"/"+kind+"/svg", bytes.NewBufferString(source))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "image/svg+xml")

	res, err := k.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return "", fmt.Errorf("diagram service: %s", firstLine(msg))
	}
	return string(body), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

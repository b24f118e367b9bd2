// Package reports lists, fetches, uploads and renders Markdown reports.
package reports

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"ohara-cli/internal/api"

	"github.com/rs/zerolog"
)

const (
	EmptyListMessage  = "No reports yet."
	ListFailedMessage = "Failed to load reports."
)

// ErrInvalidFilename rejects an upload name the backend would refuse.
var ErrInvalidFilename = errors.New("report filename must be letters, digits, underscores or hyphens ending in .md")

var validFilename = regexp.MustCompile(`^[\w][\w\-]*\.md$`)

// ValidFilename reports whether name is an acceptable report filename.
func ValidFilename(name string) bool { return validFilename.MatchString(name) }

// DisplayName strips the .md suffix.
func DisplayName(filename string) string { return strings.TrimSuffix(filename, ".md") }

// Backend is the reports half of the REST API. *api.Client implements it.
type Backend interface {
	ListReports(ctx context.Context) ([]string, error)
	GetReport(ctx context.Context, filename string) (string, error)
	UploadReport(ctx context.Context, filename, content string) error
}

type Entry struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
}

// Report is a fetched report's raw Markdown.
type Report struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	Markdown string `json:"markdown"`
}

// LoadError is a failed report fetch. Its message is the inline placeholder text.
type LoadError struct {
	Filename string
	Err      error
}

func (e *LoadError) Error() string { return "Failed to load report: " + api.Message(e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Viewer is the report viewer over a Backend.
type Viewer struct {
	backend Backend
	log     zerolog.Logger
}

type Option func(*Viewer)

func WithLogger(l zerolog.Logger) Option {
	return func(v *Viewer) { v.log = l }
}

func NewViewer(b Backend, opts ...Option) *Viewer {
	v := &Viewer{backend: b, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// List returns reports in backend order (newest-looking name first).
func (v *Viewer) List(ctx context.Context) ([]Entry, error) {
	names, err := v.backend.ListReports(ctx)
	if err != nil {
		v.log.Warn().Err(err).Msg("failed to list reports")
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		out = append(out, Entry{Filename: n, Name: DisplayName(n)})
	}
	return out, nil
}

// Open fetches the raw Markdown of filename.
func (v *Viewer) Open(ctx context.Context, filename string) (Report, error) {
	md, err := v.backend.GetReport(ctx, filename)
	if err != nil {
		v.log.Warn().Err(err).Str("filename", filename).Msg("failed to load report")
		return Report{}, &LoadError{Filename: filename, Err: err}
	}
	return Report{Filename: filename, Name: DisplayName(filename), Markdown: md}, nil
}

// Upload creates or overwrites filename. Names are checked before any request.
func (v *Viewer) Upload(ctx context.Context, filename, content string) error {
	if !ValidFilename(filename) {
		return fmt.Errorf("%q: %w", filename, ErrInvalidFilename)
	}
	if err := v.backend.UploadReport(ctx, filename, content); err != nil {
		return api.WrapAction("upload report", err)
	}
	v.log.Debug().Str("filename", filename).Int("bytes", len(content)).Msg("report uploaded")
	return nil
}

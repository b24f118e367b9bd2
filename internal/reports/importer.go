package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoMatches is returned when upload patterns match no report files.
var ErrNoMatches = errors.New("no report files matched")

var (
	unsafeNameRe     = regexp.MustCompile(`[^\w\-]+`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// Importable reports whether path has an extension UploadFile accepts.
func Importable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".html", ".htm":
		return true
	}
	return false
}

// ReportFilename derives the upload name for a local file: its base name with
// characters outside [A-Za-z0-9_-] collapsed to '-' and a .md extension.
func ReportFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(unsafeNameRe.ReplaceAllString(stem, "-"), "-")
	return stem + ".md"
}

// HTMLToMarkdown converts an HTML page to GitHub-flavoured Markdown.
func HTMLToMarkdown(src string) (string, error) {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	out, err := conv.ConvertString(src)
	if err != nil {
		return "", err
	}
	out = excessiveLinesRe.ReplaceAllString(out, "\n\n\n")
	return strings.TrimSpace(out) + "\n", nil
}

// UploadResult is the outcome for one local file.
type UploadResult struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Err      error  `json:"-"`
}

// Message is the error text, or "" on success.
func (r UploadResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// UploadFile reads path, converts HTML to Markdown and uploads it under
// ReportFilename(path).
func (v *Viewer) UploadFile(ctx context.Context, path string) UploadResult {
	res := UploadResult{Path: path, Filename: ReportFilename(path)}
	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	content := string(raw)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		if content, err = HTMLToMarkdown(content); err != nil {
			res.Err = fmt.Errorf("convert %s: %w", path, err)
			return res
		}
	}
	res.Err = v.Upload(ctx, res.Filename, content)
	return res
}

// UploadGlob uploads every importable file matched by patterns. Patterns support
// ** via doublestar; plain paths are taken as-is. Each file is uploaded once.
func (v *Viewer) UploadGlob(ctx context.Context, patterns []string) ([]UploadResult, error) {
	paths, err := ResolveFiles(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(patterns, " "), ErrNoMatches)
	}
	out := make([]UploadResult, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, v.UploadFile(ctx, p))
	}
	return out, nil
}

// ResolveFiles expands patterns to importable regular files, deduplicated in
// first-seen order.
func ResolveFiles(patterns []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, pattern := range patterns {
		matches := []string{pattern}
		if strings.ContainsAny(pattern, "*?[{") {
			var err error
			matches, err = doublestar.FilepathGlob(pattern)
			if err != nil {
				return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
			}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if info.IsDir() || !Importable(m) || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ohara-cli/internal/model"

	"github.com/rs/zerolog"
)

const markdownContentType = "text/markdown"

// Client consumes the touchpoint REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client rooted at baseURL (e.g. "http://localhost:8080/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListTouchpoints(ctx context.Context) ([]model.Touchpoint, error) {
	var out []model.Touchpoint
	if err := c.do(ctx, http.MethodGet, "/touchpoints", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Touchpoint{}
	}
	return out, nil
}

func (c *Client) CreateTouchpoint(ctx context.Context, in model.TouchpointInput) (model.Touchpoint, error) {
	var out model.Touchpoint
	err := c.do(ctx, http.MethodPost, "/touchpoints", normalizeInput(in), &out)
	return out, err
}

func (c *Client) UpdateTouchpoint(ctx context.Context, id string, in model.TouchpointInput) (model.Touchpoint, error) {
	var out model.Touchpoint
	err := c.do(ctx, http.MethodPut, "/touchpoints/"+url.PathEscape(id), normalizeInput(in), &out)
	return out, err
}

func (c *Client) DeleteTouchpoint(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/touchpoints/"+url.PathEscape(id), nil, nil)
}

func (c *Client) GetMetadata(ctx context.Context) (model.Metadata, error) {
	var out model.Metadata
	if err := c.do(ctx, http.MethodGet, "/metadata", nil, &out); err != nil {
		return model.Metadata{}, err
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, nil
}

type namePayload struct {
	Name string `json:"name"`
}

func (c *Client) AddCategory(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/metadata/categories", namePayload{Name: name}, nil)
}

func (c *Client) RemoveCategory(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/metadata/categories/"+url.PathEscape(name), nil, nil)
}

func (c *Client) AddTag(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/metadata/tags", namePayload{Name: name}, nil)
}

func (c *Client) RemoveTag(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/metadata/tags/"+url.PathEscape(name), nil, nil)
}

func (c *Client) ListReports(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/reports", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// GetReport returns the raw markdown of a report.
func (c *Client) GetReport(ctx context.Context, filename string) (string, error) {
	var out string
	err := c.do(ctx, http.MethodGet, "/reports/"+url.PathEscape(filename), nil, &out)
	return out, err
}

type reportPayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (c *Client) UploadReport(ctx context.Context, filename, content string) error {
	return c.do(ctx, http.MethodPost, "/reports", reportPayload{Filename: filename, Content: content}, nil)
}

// do performs one request. A 204 leaves out untouched (null result). Markdown
// responses are stored into out when it is a *string; everything else is JSON.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/markdown")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("method", method).Str("path", path).Err(err).Msg("request failed")
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrTransport, err)
	}
	defer res.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res)
	}
	if res.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if strings.Contains(res.Header.Get("Content-Type"), markdownContentType) {
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("%s %s: read body: %w: %w", method, path, ErrTransport, err)
		}
		s, ok := out.(*string)
		if !ok {
			return fmt.Errorf("%s %s: unexpected markdown response", method, path)
		}
		*s = string(b)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(b, &payload) == nil {
		msg = strings.TrimSpace(payload.Error)
	}
	if msg == "" {
		msg = http.StatusText(res.StatusCode)
	}
	return &Error{Status: res.StatusCode, Message: msg}
}

func normalizeInput(in model.TouchpointInput) model.TouchpointInput {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.PeopleInvolved == nil {
		in.PeopleInvolved = []string{}
	}
	return in
}

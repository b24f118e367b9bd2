package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ohara-cli/internal/apitest"
	"ohara-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("OHARA_CONFIG_DIR", t.TempDir())
	for _, k := range []string{"OHARA_CONFIG", "OHARA_FORMAT", "OHARA_API_URL", "OHARA_LOG_LEVEL", "OHARA_DIAGRAM_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func newBackend(t *testing.T) (*apitest.Server, string) {
	t.Helper()
	isolate(t)
	return apitest.NewTestServer(t)
}

func runCLI(t *testing.T, stdin string, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// mustRun runs against base and decodes the JSON envelope.
func mustRun(t *testing.T, base string, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, "", append([]string{"--api", base}, args...)...)
	require.NoError(t, err, "ohara %v\nstderr:\n%s", args, stderr)
	var env map[string]any
	require.NoError(t, json.Unmarshal(stdout, &env), "stdout:\n%s", stdout)
	require.Contains(t, env, "data")
	return env
}

func TestTouchpoints_AddListEdit(t *testing.T) {
	_, base := newBackend(t)

	env := mustRun(t, base, "touchpoints", "add",
		"--description", "  Reviewed deploy script  ",
		"--category", "Mentorship",
		"--tag", "go", "--tag", "docker",
		"--people", "Alice, Bob, ",
	)
	tp := env["data"].(map[string]any)
	id := tp["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Reviewed deploy script", tp["description"])
	assert.Equal(t, []any{"Alice", "Bob"}, tp["people_involved"])

	env = mustRun(t, base, "touchpoints", "list", "--tag", "docker")
	rows := env["data"].([]any)
	require.Len(t, rows, 1)
	meta := env["meta"].(map[string]any)
	assert.EqualValues(t, 1, meta["count"])
	assert.EqualValues(t, 1, meta["total"])

	env = mustRun(t, base, "touchpoints", "list", "--tag", "security")
	assert.Empty(t, env["data"])

	// Unset flags keep their values.
	env = mustRun(t, base, "tp", "edit", id, "--url", "https://example.test/pr/1")
	tp = env["data"].(map[string]any)
	assert.Equal(t, "Reviewed deploy script", tp["description"])
	assert.Equal(t, "https://example.test/pr/1", tp["url"])
	assert.Equal(t, []any{"go", "docker"}, tp["tags"])
}

func TestTouchpoints_AddIncompleteFormFails(t *testing.T) {
	srv, base := newBackend(t)
	srv.ResetRequests()

	_, stderr, err := runCLI(t, "", "--api", base, "touchpoints", "add", "--description", "   ")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "description and category are required")
	assert.Empty(t, srv.Requests())
}

func TestTouchpoints_UnknownVocabularyRejectedBeforeSubmit(t *testing.T) {
	srv, base := newBackend(t)
	srv.ResetRequests()

	_, stderr, err := runCLI(t, "", "--api", base, "touchpoints", "add", "--description", "x", "--category", "Gardening")
	require.Error(t, err)
	assert.Contains(t, string(stderr), `invalid --category: unknown category "Gardening"`)
	assert.NotContains(t, srv.Requests(), "POST /touchpoints")
	assert.Contains(t, srv.Requests(), "GET /metadata")

	_, stderr, err = runCLI(t, "", "--api", base, "touchpoints", "add", "--description", "x", "--category", "Mentorship", "--tag", "go", "--tag", "rust")
	require.Error(t, err)
	assert.Contains(t, string(stderr), `invalid --tag: unknown tag "rust"`)
	assert.NotContains(t, srv.Requests(), "POST /touchpoints")

	tp, err := srv.Store().CreateTouchpoint(context.Background(), model.TouchpointInput{Description: "x", Category: "Mentorship"})
	require.NoError(t, err)
	srv.ResetRequests()
	_, stderr, err = runCLI(t, "", "--api", base, "touchpoints", "edit", tp.ID, "--tag", "rust")
	require.Error(t, err)
	assert.Contains(t, string(stderr), `invalid --tag: unknown tag "rust"`)
	assert.NotContains(t, srv.Requests(), "PUT /touchpoints/"+tp.ID)
}

func TestTouchpoints_EditUnknownID(t *testing.T) {
	_, base := newBackend(t)
	_, stderr, err := runCLI(t, "", "--api", base, "touchpoints", "edit", "nope", "--url", "x")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "touchpoint not found: nope")
}

func TestTouchpoints_RmConfirmation(t *testing.T) {
	srv, base := newBackend(t)
	tp, err := srv.Store().CreateTouchpoint(context.Background(), model.TouchpointInput{Description: "x", Category: "Mentorship"})
	require.NoError(t, err)

	srv.ResetRequests()
	_, stderr, err := runCLI(t, "n\n", "--api", base, "touchpoints", "rm", tp.ID)
	require.ErrorIs(t, err, errAborted)
	assert.Contains(t, string(stderr), "Delete this touchpoint? [y/N]")
	assert.Empty(t, srv.Requests())

	stdout, _, err := runCLI(t, "yes\n", "--api", base, "touchpoints", "rm", tp.ID)
	require.NoError(t, err)
	assert.Contains(t, string(stdout), `"deleted":true`)

	_, stderr, err = runCLI(t, "", "--api", base, "touchpoints", "rm", "--yes", tp.ID)
	require.Error(t, err)
	assert.Contains(t, string(stderr), "Failed to delete touchpoint:")
}

func TestTouchpoints_ListDisplayModel(t *testing.T) {
	_, base := newBackend(t)
	mustRun(t, base, "touchpoints", "add", "--description", "line one\nline two", "--category", "Knowledge Sharing")

	env := mustRun(t, base, "touchpoints", "list", "--display", "--width", "20")
	dm := env["data"].(map[string]any)
	assert.Equal(t, false, dm["loadFailed"])
	assert.Equal(t, "All time", dm["dateRange"])
	rows := dm["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "line one…", row["description"])
	assert.Len(t, dm["timeline"], 12)
	opts := dm["categoryOptions"].([]any)
	assert.Equal(t, "All categories", opts[0].(map[string]any)["label"])
}

func TestTouchpoints_InvalidDays(t *testing.T) {
	_, base := newBackend(t)
	_, stderr, err := runCLI(t, "", "--api", base, "touchpoints", "list", "--days", "14")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "invalid --days")
}

func TestTimeline(t *testing.T) {
	srv, base := newBackend(t)
	now := time.Now()
	srv.Store().SetClock(func() time.Time { return now })
	_, err := srv.Store().CreateTouchpoint(context.Background(), model.TouchpointInput{Description: "a", Category: "Mentorship", Tags: []string{"go"}})
	require.NoError(t, err)

	env := mustRun(t, base, "timeline")
	buckets := env["data"].([]any)
	require.Len(t, buckets, 12)
	last := buckets[11].(map[string]any)
	assert.Equal(t, now.Format("2006-01"), last["month"])
	assert.EqualValues(t, 1, last["count"])
	assert.EqualValues(t, 1, last["tagDiversity"])
	assert.EqualValues(t, 1, env["meta"].(map[string]any)["peak"])
}

func TestMetadataCommands(t *testing.T) {
	_, base := newBackend(t)

	env := mustRun(t, base, "metadata", "add-tag", "  kubernetes ")
	tags := env["data"].(map[string]any)["tags"].([]any)
	assert.Equal(t, "kubernetes", tags[len(tags)-1])

	_, stderr, err := runCLI(t, "", "--api", base, "metadata", "add-tag", "go")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "Failed to add tag:")

	_, stderr, err = runCLI(t, "", "--api", base, "metadata", "add-category", "   ")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "name is required")

	env = mustRun(t, base, "metadata", "rm-category", "Mentorship")
	cats := env["data"].(map[string]any)["categories"].([]any)
	first := cats[0].(map[string]any)
	assert.Equal(t, "Tools and infrastructure maintenance", first["name"])
	assert.Equal(t, "blue", first["color"].(map[string]any)["name"])
}

func TestReportsCommands(t *testing.T) {
	srv, base := newBackend(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weekly.md"), []byte("# Weekly\n\nShipped it."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	env := mustRun(t, base, "reports", "upload", filepath.Join(dir, "*"))
	results := env["data"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0].(map[string]any)["ok"])

	env = mustRun(t, base, "reports", "list")
	entries := env["data"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "weekly", entries[0].(map[string]any)["name"])

	env = mustRun(t, base, "reports", "show", "weekly.md")
	assert.Equal(t, "# Weekly\n\nShipped it.", env["data"].(map[string]any)["markdown"])

	stdout, _, err := runCLI(t, "", "--api", base, "reports", "show", "weekly.md", "--html")
	require.NoError(t, err)
	assert.Contains(t, string(stdout), "<h1")
	assert.Contains(t, string(stdout), "Shipped it.")

	_, stderr, err := runCLI(t, "", "--api", base, "reports", "show", "weekly.md", "--diagrams")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "--diagrams requires --html")

	srv.FailNext("GET /reports", 500)
	_, stderr, err = runCLI(t, "", "--api", base, "reports", "list")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "list reports")
}

func TestOutputFormats(t *testing.T) {
	_, base := newBackend(t)

	stdout, _, err := runCLI(t, "", "--api", base, "--format", "edn", "metadata", "show")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stdout), "{:data {:categories ["), string(stdout))

	_, stderr, err := runCLI(t, "", "--api", base, "--format", "yaml", "metadata", "show")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "invalid --format")
}

func TestConfigFlagMustExist(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "metadata", "show")
	require.Error(t, err)
}

func TestUnreachableBackend(t *testing.T) {
	isolate(t)
	_, stderr, err := runCLI(t, "", "--api", "http://127.0.0.1:1/api", "metadata", "show")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "load metadata")
}

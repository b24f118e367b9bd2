package apitest

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ohara-cli/internal/model"
)

func openTestStore(t *testing.T, seed bool) *Store {
	t.Helper()
	st, err := OpenStore(context.Background(), ":memory:", seed)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenStore_SeedsDefaultVocabulary(t *testing.T) {
	st := openTestStore(t, true)
	md, err := st.GetMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if len(md.Categories) != len(DefaultCategories) || md.Categories[0] != "Mentorship" {
		t.Fatalf("unexpected categories: %v", md.Categories)
	}
	if len(md.Tags) != len(DefaultTags) {
		t.Fatalf("unexpected tags: %v", md.Tags)
	}
}

func TestOpenStore_ReopenDoesNotDuplicateSeed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mock.db")
	for i := 0; i < 2; i++ {
		st, err := OpenStore(ctx, path, true)
		if err != nil {
			t.Fatalf("OpenStore #%d: %v", i, err)
		}
		md, err := st.GetMetadata(ctx)
		_ = st.Close()
		if err != nil {
			t.Fatalf("GetMetadata: %v", err)
		}
		if len(md.Tags) != len(DefaultTags) {
			t.Fatalf("open #%d: expected %d tags, got %v", i, len(DefaultTags), md.Tags)
		}
	}
}

func TestVocabulary_DuplicateAndMissing(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, false)

	if err := st.AddTag(ctx, "go"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := st.AddTag(ctx, "go"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := st.AddCategory(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := st.RemoveCategory(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTouchpoints_CreateValidatesAgainstVocabulary(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, true)
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	st.SetClock(func() time.Time { return fixed })

	_, err := st.CreateTouchpoint(ctx, model.TouchpointInput{Description: "x", Category: "Unknown"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown category, got %v", err)
	}
	_, err = st.CreateTouchpoint(ctx, model.TouchpointInput{Description: "x", Category: "Mentorship", Tags: []string{"rust"}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown tag, got %v", err)
	}

	tp, err := st.CreateTouchpoint(ctx, model.TouchpointInput{
		Description: "<b>Paired</b> on CI",
		Category:    "Mentorship",
		Tags:        []string{"go"},
	})
	if err != nil {
		t.Fatalf("CreateTouchpoint: %v", err)
	}
	if tp.Date != "2024-06-15T12:00:00Z" {
		t.Fatalf("expected server-assigned date, got %q", tp.Date)
	}
	if strings.Contains(tp.Description, "<b>") {
		t.Fatalf("expected markup stripped, got %q", tp.Description)
	}
	if tp.PeopleInvolved == nil {
		t.Fatalf("expected empty people slice, got nil")
	}
}

func TestTouchpoints_RemovedVocabularyKeepsAssignments(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, true)
	tp, err := st.CreateTouchpoint(ctx, model.TouchpointInput{Description: "x", Category: "Mentorship", Tags: []string{"docker"}})
	if err != nil {
		t.Fatalf("CreateTouchpoint: %v", err)
	}
	if err := st.RemoveTag(ctx, "docker"); err != nil {
		t.Fatalf("RemoveTag: %v", err)
	}
	all, err := st.ListTouchpoints(ctx)
	if err != nil {
		t.Fatalf("ListTouchpoints: %v", err)
	}
	if len(all) != 1 || all[0].ID != tp.ID || len(all[0].Tags) != 1 || all[0].Tags[0] != "docker" {
		t.Fatalf("expected assignment kept, got %+v", all)
	}
}

func TestTouchpoints_UpdateAndDeleteUnknown(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, true)
	_, err := st.UpdateTouchpoint(ctx, "missing", model.TouchpointInput{Description: "x", Category: "Mentorship"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := st.DeleteTouchpoint(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestReports_FilenameAndOrder(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t, false)

	for _, bad := range []string{"../etc.md", "notes.txt", "-x.md", "a b.md"} {
		if err := st.PutReport(ctx, bad, "x"); !errors.Is(err, ErrInvalidFilename) {
			t.Fatalf("%q: expected ErrInvalidFilename, got %v", bad, err)
		}
	}
	for _, name := range []string{"2024-05-weekly.md", "2024-06-weekly.md"} {
		if err := st.PutReport(ctx, name, "# "+name); err != nil {
			t.Fatalf("PutReport %s: %v", name, err)
		}
	}
	names, err := st.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(names) != 2 || names[0] != "2024-06-weekly.md" {
		t.Fatalf("expected newest first, got %v", names)
	}
	if _, err := st.GetReport(ctx, "2024-01-weekly.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServer_StatusMappingAndFailures(t *testing.T) {
	srv, base := NewTestServer(t)

	resp, err := http.Get(base + "/reports/-x.md")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid filename, got %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/reports/missing.md")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	srv.FailNext("GET /metadata", http.StatusServiceUnavailable)
	resp, err = http.Get(base + "/metadata")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected injected 503, got %d", resp.StatusCode)
	}

	srv.FailNext("GET /metadata", 0)
	resp, err = http.Get(base + "/metadata")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after clearing, got %d", resp.StatusCode)
	}

	got := srv.Requests()
	if len(got) != 4 || got[3] != "GET /metadata" {
		t.Fatalf("unexpected request log: %v", got)
	}
}

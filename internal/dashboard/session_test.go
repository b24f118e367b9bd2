package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ohara-cli/internal/api"
	"ohara-cli/internal/apitest"
	"ohara-cli/internal/dashboard"
	"ohara-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T) (*dashboard.Session, *apitest.Server) {
	t.Helper()
	srv, base := apitest.NewBareTestServer(t)
	ctx := context.Background()
	st := srv.Store()
	st.SetClock(func() time.Time { return sessionNow })
	for _, c := range []string{"Work", "Personal"} {
		require.NoError(t, st.AddCategory(ctx, c))
	}
	for _, tag := range []string{"urgent", "review"} {
		require.NoError(t, st.AddTag(ctx, tag))
	}
	s := dashboard.NewSession(api.New(base), dashboard.WithClock(func() time.Time { return sessionNow }))
	return s, srv
}

func seed(t *testing.T, srv *apitest.Server, tp model.Touchpoint) model.Touchpoint {
	t.Helper()
	tp, err := srv.Store().Seed(context.Background(), tp)
	require.NoError(t, err)
	return tp
}

func TestSession_CreateScenario(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Activate(ctx))

	s.BeginCreate()
	s.Editor().Update(func(f *dashboard.Form) {
		f.Description = "Met with team"
		f.Category = "Work"
		f.People = "Alice, Bob, "
	})
	s.Editor().ToggleTag("urgent")
	srv.ResetRequests()

	tp, err := s.SubmitEditor(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, tp.PeopleInvolved)
	assert.Equal(t, []string{"urgent"}, tp.Tags)
	assert.Equal(t, dashboard.EditorIdle, s.Editor().Mode())

	assert.Equal(t, "POST /touchpoints", srv.Requests()[0])
	assert.ElementsMatch(t, []string{"GET /touchpoints", "GET /metadata"}, srv.Requests()[1:])

	all := s.Touchpoints().All()
	require.Len(t, all, 1)
	assert.Equal(t, tp, all[0])
	assert.Equal(t, 1, s.Render().Timeline[11].Count)
}

func TestSession_SubmitSendsTagsInVocabularyOrder(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Activate(ctx))

	s.BeginCreate()
	s.Editor().Update(func(f *dashboard.Form) {
		f.Description = "Triage"
		f.Category = "Work"
	})
	s.Editor().ToggleTag("review")
	s.Editor().ToggleTag("urgent")

	tp, err := s.SubmitEditor(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent", "review"}, tp.Tags)
}

func TestSession_InvalidSubmitIsSilent(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Activate(ctx))

	s.BeginCreate()
	s.Editor().Update(func(f *dashboard.Form) {
		f.Description = "   "
		f.Category = "Work"
	})
	srv.ResetRequests()

	_, err := s.SubmitEditor(ctx)
	require.ErrorIs(t, err, dashboard.ErrIncompleteForm)
	assert.True(t, dashboard.IsSilent(err))
	assert.Empty(t, dashboard.AlertMessage(err))
	assert.Empty(t, srv.Requests())
	assert.Equal(t, dashboard.EditorCreating, s.Editor().Mode())

	_, err = dashboard.NewSession(api.New("http://unused")).SubmitEditor(ctx)
	assert.ErrorIs(t, err, dashboard.ErrEditorIdle)
}

func TestSession_EditSeedsAndUpdates(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	tp := seed(t, srv, model.Touchpoint{
		Date:           "2024-06-01T09:00:00Z",
		Description:    "Design review",
		Category:       "Work",
		Tags:           []string{"review"},
		PeopleInvolved: []string{"Alice", "Bob"},
	})
	require.NoError(t, s.Activate(ctx))

	assert.ErrorIs(t, s.BeginEdit("missing"), dashboard.ErrUnknownTouchpoint)
	require.NoError(t, s.BeginEdit(tp.ID))
	assert.Equal(t, "Alice, Bob", s.Editor().Form().People)
	assert.Equal(t, []string{"review"}, s.Editor().Form().Tags)

	srv.FailNext("PUT /touchpoints/"+tp.ID, 500)
	_, err := s.SubmitEditor(ctx)
	require.Error(t, err)
	assert.Equal(t, "Failed to save touchpoint: injected failure", dashboard.AlertMessage(err))
	assert.Equal(t, dashboard.EditorEditing, s.Editor().Mode(), "form stays open after a backend error")
	srv.FailNext("PUT /touchpoints/"+tp.ID, 0)

	s.Editor().Update(func(f *dashboard.Form) { f.People = "Carol" })
	updated, err := s.SubmitEditor(ctx)
	require.NoError(t, err)
	assert.Equal(t, tp.ID, updated.ID)
	assert.Equal(t, tp.Date, updated.Date)
	assert.Equal(t, []string{"Carol"}, updated.PeopleInvolved)
	assert.Equal(t, dashboard.EditorIdle, s.Editor().Mode())

	got, ok := s.Touchpoints().Find(tp.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"Carol"}, got.PeopleInvolved)
}

func TestSession_CancelMakesNoCalls(t *testing.T) {
	s, srv := newTestSession(t)
	s.BeginCreate()
	s.Editor().Update(func(f *dashboard.Form) { f.Description = "x" })
	srv.ResetRequests()
	s.CancelEditor()
	assert.Equal(t, dashboard.EditorIdle, s.Editor().Mode())
	assert.Empty(t, srv.Requests())
	assert.Nil(t, s.Render().Editor)
}

func TestSession_DeleteRequiresConfirmation(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	tp := seed(t, srv, model.Touchpoint{Date: "2024-06-01", Description: "x", Category: "Work"})
	require.NoError(t, s.Activate(ctx))

	var prompt string
	decline := dashboard.ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return false, nil
	})
	srv.ResetRequests()
	err := s.DeleteTouchpoint(ctx, tp.ID, decline)
	assert.ErrorIs(t, err, dashboard.ErrNotConfirmed)
	assert.Equal(t, dashboard.DeletePrompt, prompt)
	assert.Empty(t, srv.Requests())

	require.NoError(t, s.DeleteTouchpoint(ctx, tp.ID, dashboard.Confirmed))
	assert.Empty(t, s.Touchpoints().All())
	assert.Equal(t, dashboard.EmptyMessage, s.Render().Message)

	err = s.DeleteTouchpoint(ctx, tp.ID, dashboard.Confirmed)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Contains(t, dashboard.AlertMessage(err), "Failed to delete touchpoint: ")
}

func TestSession_RemovingCategoryKeepsTouchpoints(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	tp := seed(t, srv, model.Touchpoint{Date: "2024-06-01", Description: "x", Category: "Personal"})
	require.NoError(t, s.Activate(ctx))
	s.SetCategory("Personal")

	require.NoError(t, s.RemoveCategory(ctx, "Personal"))

	md, err := s.Metadata().Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"Work"}, md.Categories)
	assert.Empty(t, s.Filter().Category, "filter drops a category that left the vocabulary")

	require.NoError(t, s.Reload(ctx))
	dm := s.Render()
	require.Len(t, dm.Rows, 1)
	assert.Equal(t, tp.ID, dm.Rows[0].ID)
	assert.Equal(t, "Personal", dm.Rows[0].Category)
	assert.Equal(t, dashboard.Palette[0], dm.Rows[0].Color)
}

func TestSession_MetadataMutations(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Activate(ctx))

	srv.ResetRequests()
	err := s.AddCategory(ctx, "   ")
	assert.ErrorIs(t, err, dashboard.ErrEmptyName)
	assert.Empty(t, srv.Requests())

	require.NoError(t, s.AddTag(ctx, "  follow-up "))
	md, _ := s.Metadata().Get()
	assert.Equal(t, []string{"urgent", "review", "follow-up"}, md.Tags)
	assert.Equal(t, []string{"POST /metadata/tags", "GET /metadata"}, srv.Requests())

	err = s.AddCategory(ctx, "Work")
	require.Error(t, err)
	assert.Equal(t, "Failed to add category: category Work: already exists", dashboard.AlertMessage(err))

	err = s.RemoveTag(ctx, "nope")
	require.Error(t, err)
	assert.Equal(t, "Failed to remove tag: tag nope: not found", dashboard.AlertMessage(err))

	s.ToggleTag("review")
	require.NoError(t, s.RemoveTag(ctx, "review"))
	assert.Empty(t, s.Filter().Tags)
}

func TestSession_MetadataReloadFailureShowsFailureState(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Activate(ctx))

	srv.FailNext("GET /metadata", 503)
	require.NoError(t, s.AddCategory(ctx, "New"), "the mutation itself succeeded")

	md, err := s.Metadata().Get()
	require.Error(t, err)
	assert.Equal(t, model.EmptyMetadata(), md)
	assert.True(t, s.Render().LoadFailed)
}

func TestSession_LoadFailureResetsBoth(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	seed(t, srv, model.Touchpoint{Date: "2024-06-01", Description: "x", Category: "Work"})
	require.NoError(t, s.Activate(ctx))
	require.Len(t, s.Touchpoints().All(), 1)

	srv.FailNext("GET /metadata", 500)
	err := s.Reload(ctx)
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Empty(t, snap.Touchpoints)
	assert.Equal(t, model.EmptyMetadata(), snap.Metadata)
	dm := s.Render()
	assert.True(t, dm.LoadFailed)
	assert.Equal(t, dashboard.LoadFailedMessage, dm.Message)

	srv.FailNext("GET /metadata", 0)
	require.NoError(t, s.Reload(ctx))
	assert.False(t, s.Render().LoadFailed)
}

func TestSession_TransportFailure(t *testing.T) {
	s := dashboard.NewSession(api.New("http://127.0.0.1:1/api", api.WithTimeout(time.Second)))
	err := s.Activate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrTransport))
	assert.True(t, s.Render().LoadFailed)
}

func TestSession_ReloadIsIdempotent(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	seed(t, srv, model.Touchpoint{Date: "2024-06-01", Description: "a", Category: "Work", Tags: []string{"urgent"}})
	seed(t, srv, model.Touchpoint{Date: "2024-06-01", Description: "b", Category: "Personal"})
	seed(t, srv, model.Touchpoint{Date: "bad", Description: "c", Category: "Work"})

	require.NoError(t, s.Activate(ctx))
	first := s.Render()
	require.NoError(t, s.Reload(ctx))
	assert.Equal(t, first, s.Render())
}

func TestSession_TimelineFollowsFilter(t *testing.T) {
	s, srv := newTestSession(t)
	ctx := context.Background()
	seed(t, srv, model.Touchpoint{Date: "2024-06-01", Description: "a", Category: "Work", Tags: []string{"urgent"}})
	seed(t, srv, model.Touchpoint{Date: "2024-06-02", Description: "b", Category: "Personal", Tags: []string{"review"}})
	require.NoError(t, s.Activate(ctx))

	assert.Equal(t, 2, s.Timeline()[11].Count)
	s.ToggleTag("urgent")
	tl := s.Timeline()
	assert.Equal(t, 1, tl[11].Count)
	assert.Equal(t, 1, tl[11].TagDiversity)

	s.CycleDateRange()
	assert.Equal(t, dashboard.DateRange(7), s.Filter().Range)
	assert.Empty(t, s.Filtered(), "June 1 is outside the last 7 days")
}

package reports_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_UploadsChangedFiles(t *testing.T) {
	v, srv := newViewer(t)
	dir := t.TempDir()

	w, err := v.NewWatcher(dir, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, filepath.Join(dir, "ignored.txt"), "x")
	writeFile(t, filepath.Join(dir, "live.md"), "# Live\n")

	select {
	case res := <-w.Results():
		require.NoError(t, res.Err)
		assert.Equal(t, "live.md", res.Filename)
	case <-time.After(5 * time.Second):
		t.Fatal("no upload after file change")
	}

	got, err := srv.Store().GetReport(context.Background(), "live.md")
	require.NoError(t, err)
	assert.Equal(t, "# Live\n", got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	for range w.Results() {
	}
}

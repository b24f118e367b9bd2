package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeUntilCanceled(t *testing.T) {
	t.Setenv("OHARA_CONFIG_DIR", t.TempDir())
	db := filepath.Join(t.TempDir(), "mock.sqlite")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0", "--db", db})
	cmd.SetErr(os.Stderr)
	require.NoError(t, cmd.ExecuteContext(ctx))

	_, err := os.Stat(db)
	assert.NoError(t, err, "database file is created")
}

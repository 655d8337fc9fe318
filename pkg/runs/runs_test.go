package runs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesTimestampedRun(t *testing.T) {
	dir := t.TempDir()

	ctx, err := New(dir, "")
	require.NoError(t, err)

	assert.True(t, len(ctx.RunID) > len("run_"))
	assert.Contains(t, ctx.RunID, "run_")
	assert.DirExists(t, ctx.Dir)
	assert.Equal(t, filepath.Join(ctx.Dir, "report.yaml"), ctx.ReportPath())
	assert.Equal(t, filepath.Join(ctx.Dir, "config_snapshot.yaml"), ctx.ConfigSnapshotPath())
}

func TestNewWithOverride(t *testing.T) {
	dir := t.TempDir()

	ctx, err := New(dir, "nightly-01")
	require.NoError(t, err)
	assert.Equal(t, "run_nightly-01", ctx.RunID)

	// Prefix is kept when already present.
	ctx2, err := New(dir, "run_nightly-02")
	require.NoError(t, err)
	assert.Equal(t, "run_nightly-02", ctx2.RunID)
}

func TestNewRejectsExistingDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := New(dir, "dup")
	require.NoError(t, err)
	_, err = New(dir, "dup")
	require.Error(t, err)
}

func TestNewRejectsBadRunIDs(t *testing.T) {
	dir := t.TempDir()

	for _, id := range []string{"  ", "a/b", `a\b`, "..", "run_a b", "run_ä"} {
		_, err := New(dir, id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestCleanupKeepsNewestRuns(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"run_20250101_120000",
		"run_20250102_120000",
		"run_20250103_120000",
		"run_20250104_120000",
		"run_20250105_120000",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
	}
	// A non-run directory is left alone.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "other"), 0o755))

	require.NoError(t, Cleanup(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"run_20250104_120000", "run_20250105_120000", "other"}, names)
}

func TestCleanupMissingDirIsNoop(t *testing.T) {
	require.NoError(t, Cleanup(filepath.Join(t.TempDir(), "nope"), 2))
}

package clean

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pysweep/internal/scan"
)

func newTestTarget(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "oldvenv")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "data"), make([]byte, 90), 0o644))
	return dir
}

func TestPlanMissingTarget(t *testing.T) {
	g := NewGuard(nil)
	_, err := g.Plan(filepath.Join(t.TempDir(), "gone"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecuteDryRunNeverMutates(t *testing.T) {
	target := newTestTarget(t)
	g := NewGuard(nil)

	plan, err := g.Plan(target)
	require.NoError(t, err)

	res, err := g.Execute(plan, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.False(t, res.Removed)
	assert.Equal(t, int64(100), res.SizeBytes)

	_, err = os.Stat(target)
	assert.NoError(t, err, "dry run must leave the target untouched")
}

func TestExecuteProtectedRefusedUnconditionally(t *testing.T) {
	// A classifier rooted at the temp dir makes a real, existing path
	// "protected" without touching the actual system.
	target := newTestTarget(t)
	g := NewGuard(&scan.Classifier{Roots: []string{filepath.Dir(target)}})

	plan, err := g.Plan(target)
	require.NoError(t, err)

	_, err = g.Execute(plan, Options{SkipConfirmation: true})
	assert.ErrorIs(t, err, ErrProtected)

	// Even a dry run reports the refusal, not a would-delete result.
	_, err = g.Execute(plan, Options{DryRun: true})
	assert.ErrorIs(t, err, ErrProtected)

	_, err = os.Stat(target)
	assert.NoError(t, err)
}

func TestExecuteCancelled(t *testing.T) {
	target := newTestTarget(t)
	g := NewGuard(nil)

	plan, err := g.Plan(target)
	require.NoError(t, err)

	// Nil Confirm counts as a decline.
	_, err = g.Execute(plan, Options{})
	assert.ErrorIs(t, err, ErrCancelled)

	g.Confirm = func(string, int64) bool { return false }
	_, err = g.Execute(plan, Options{})
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = os.Stat(target)
	assert.NoError(t, err)
}

func TestExecuteRemovesDirectory(t *testing.T) {
	target := newTestTarget(t)
	g := NewGuard(nil)

	var promptedTarget string
	g.Confirm = func(path string, size int64) bool {
		promptedTarget = path
		assert.Equal(t, int64(100), size)
		return true
	}

	plan, err := g.Plan(target)
	require.NoError(t, err)

	res, err := g.Execute(plan, Options{})
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, int64(100), res.SizeBytes)
	assert.Equal(t, plan.Target, promptedTarget)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteRemovesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "stray")
	require.NoError(t, os.WriteFile(file, make([]byte, 7), 0o644))

	g := NewGuard(nil)
	plan, err := g.Plan(file)
	require.NoError(t, err)
	assert.False(t, plan.IsDir)

	res, err := g.Execute(plan, Options{SkipConfirmation: true})
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, int64(7), res.SizeBytes)
}

func TestDeletionErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &DeletionError{Path: "/x", Partial: true, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "partway")
}

package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for TrackGeneratedTests:
// - Missing test dir is a silent no-op
// - Non-repository dir is a silent no-op
// - Stages, commits, and pushes in order when configured
// - Push skipped when disabled; commit errors propagate

func TestTrackGeneratedTests_MissingDirSkips(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	err := TrackGeneratedTests(ops, t.TempDir(), "/does/not/exist", "msg", true)

	require.NoError(t, err)
	assert.Empty(t, ops.AddedPaths)
	assert.Zero(t, ops.Pushes)
}

func TestTrackGeneratedTests_NotARepoSkips(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	ops.Repository = false
	dir := t.TempDir()

	require.NoError(t, TrackGeneratedTests(ops, dir, dir, "msg", false))
	assert.Empty(t, ops.AddedPaths)
}

func TestTrackGeneratedTests_CommitsAndPushes(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	dir := t.TempDir()

	require.NoError(t, TrackGeneratedTests(ops, dir, dir, "Auto-generated test cases", true))
	assert.Equal(t, []string{dir}, ops.AddedPaths)
	assert.Equal(t, []string{"Auto-generated test cases"}, ops.Commits)
	assert.Equal(t, 1, ops.Pushes)
}

func TestTrackGeneratedTests_NoPushWhenDisabled(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	dir := t.TempDir()

	require.NoError(t, TrackGeneratedTests(ops, dir, dir, "msg", false))
	assert.Zero(t, ops.Pushes)
}

func TestTrackGeneratedTests_CommitErrorPropagates(t *testing.T) {
	t.Parallel()

	ops := NewMockOperations()
	ops.CommitErr = errors.New("nothing to commit")
	dir := t.TempDir()

	err := TrackGeneratedTests(ops, dir, dir, "msg", true)
	require.Error(t, err)
	assert.Zero(t, ops.Pushes)
}

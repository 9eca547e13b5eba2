package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

func sampleTree() *types.ResolvedTree {
	return &types.ResolvedTree{Entries: []types.TreeEntry{
		{Path: "README.md", Content: []byte("# demo\n"), Mode: 0644},
		{Path: "bin", Dir: true, Mode: 0755},
		{Path: "bin/run.sh", Content: []byte("#!/bin/sh\n"), Mode: 0755},
		{Path: "src", Dir: true},
		{Path: "src/index.ts", Content: []byte("export {}\n")},
	}}
}

func names(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestCommitWritesTree(t *testing.T) {
	parent := t.TempDir()
	dest := filepath.Join(parent, "demo")

	got, err := NewWriter().Commit(context.Background(), sampleTree(), dest, Options{})
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	data, err := os.ReadFile(filepath.Join(dest, "src", "index.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export {}\n", string(data))

	info, err := os.Stat(filepath.Join(dest, "bin", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	// no scratch directory is left next to the destination
	assert.Equal(t, []string{"demo"}, names(t, parent))
}

func TestCommitCreatesMissingParents(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "a", "b", "demo")

	_, err := NewWriter().Commit(context.Background(), sampleTree(), dest, Options{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "README.md"))
}

func TestCommitRefusesNonEmptyDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep.txt"), []byte("mine"), 0644))

	_, err := NewWriter().Commit(context.Background(), sampleTree(), dest, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrWriteDestExists))

	assert.Equal(t, []string{"keep.txt"}, names(t, dest))
}

func TestCommitReplacesEmptyDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, os.MkdirAll(dest, 0755))

	_, err := NewWriter().Commit(context.Background(), sampleTree(), dest, Options{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "README.md"))
}

func TestCommitForceSwapsDestination(t *testing.T) {
	parent := t.TempDir()
	dest := filepath.Join(parent, "demo")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "old.txt"), []byte("old"), 0644))

	_, err := NewWriter().Commit(context.Background(), sampleTree(), dest, Options{Force: true})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dest, "old.txt"))
	assert.FileExists(t, filepath.Join(dest, "README.md"))
	assert.Equal(t, []string{"demo"}, names(t, parent))
}

func TestCommitFailureLeavesDestinationUntouched(t *testing.T) {
	// a file and a directory entry cannot share a path
	broken := &types.ResolvedTree{Entries: []types.TreeEntry{
		{Path: "a", Content: []byte("file")},
		{Path: "a/b", Content: []byte("child of a file")},
	}}

	t.Run("absent destination stays absent", func(t *testing.T) {
		parent := t.TempDir()
		dest := filepath.Join(parent, "demo")

		_, err := NewWriter().Commit(context.Background(), broken, dest, Options{})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrWriteStage))

		assert.NoDirExists(t, dest)
		assert.Empty(t, names(t, parent))
	})

	t.Run("forced destination keeps its content", func(t *testing.T) {
		parent := t.TempDir()
		dest := filepath.Join(parent, "demo")
		require.NoError(t, os.MkdirAll(dest, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dest, "old.txt"), []byte("old"), 0644))

		_, err := NewWriter().Commit(context.Background(), broken, dest, Options{Force: true})
		require.Error(t, err)

		assert.Equal(t, []string{"old.txt"}, names(t, dest))
		assert.Equal(t, []string{"demo"}, names(t, parent))
	})
}

func TestCommitCanceled(t *testing.T) {
	parent := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWriter().Commit(ctx, sampleTree(), filepath.Join(parent, "demo"), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanceled))
	assert.Empty(t, names(t, parent))
}

func TestStageRejectsEscapingEntries(t *testing.T) {
	tree := &types.ResolvedTree{Entries: []types.TreeEntry{{Path: "../evil", Content: []byte("x")}}}

	err := NewWriter().Stage(context.Background(), tree, filepath.Join(t.TempDir(), "stage"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrWriteStage))
}

func TestStagingPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp", ".demo.staging-abc"), StagingPath("/tmp/demo", "abc"))
}

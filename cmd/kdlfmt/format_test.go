package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFileProducesCanonicalForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.kdl")
	require.NoError(t, os.WriteFile(path, []byte("node   1   2   3\n"), 0o644))

	out, err := formatFile(path)
	require.NoError(t, err)
	assert.Equal(t, "node 1 2 3\n", string(out))
}

func TestIsCanonicalDetectsDirtyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.kdl")
	require.NoError(t, os.WriteFile(path, []byte("node   1\n"), 0o644))

	ok, canonical, err := isCanonical(path)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "node 1\n", string(canonical))

	require.NoError(t, os.WriteFile(path, canonical, 0o644))
	ok, _, err = isCanonical(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReformatOnDiskSkipsAlreadyCanonicalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.kdl")
	require.NoError(t, os.WriteFile(path, []byte("node 1\n"), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)
	mtimeBefore := info.ModTime()

	require.NoError(t, reformatOnDisk(path))

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, mtimeBefore, info.ModTime())
}

func TestCanonicalizeHonorsConfiguredIndent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".kdlfmt.yaml"), []byte("indent: \"  \"\n"), 0o644))
	path := filepath.Join(dir, "doc.kdl")
	require.NoError(t, os.WriteFile(path, []byte("node {\nchild 1\n}\n"), 0o644))

	out, err := formatFile(path)
	require.NoError(t, err)
	assert.Equal(t, "node {\n  child 1\n}\n", string(out))
}

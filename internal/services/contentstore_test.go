package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageAndCommit(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	require.NoError(t, err)

	staged, err := store.Stage(strings.NewReader("lecture notes"), "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", staged.Name)
	assert.FileExists(t, staged.Path)

	target := t.TempDir()
	final, err := store.Commit(staged, target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "notes.pdf"), final)

	content, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "lecture notes", string(content))
	assert.NoFileExists(t, staged.Path)
}

func TestStageSameNameTwice(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Stage(strings.NewReader("one"), "notes.pdf")
	require.NoError(t, err)
	second, err := store.Stage(strings.NewReader("two"), "notes.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, first.Path, second.Path)
}

func TestStageRejectsBadName(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Stage(strings.NewReader("x"), "../../etc/passwd")
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestDiscard(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	require.NoError(t, err)

	staged, err := store.Stage(strings.NewReader("x"), "notes.pdf")
	require.NoError(t, err)
	store.Discard(staged)
	assert.NoFileExists(t, staged.Path)
}

func TestProbeDurationNonVideo(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a video"), 0o644))

	seconds, err := store.ProbeDuration(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seconds)
}

func TestProbeDurationCorruptVideo(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not an mp4"), 0o644))

	_, err = store.ProbeDuration(path)
	assert.Error(t, err)
}

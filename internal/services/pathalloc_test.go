package services

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSegment(t *testing.T) {
	assert.NoError(t, ValidateSegment("Algebra"))
	assert.NoError(t, ValidateSegment("intro video.mp4"))

	for _, name := range []string{"", "   ", ".", "..", "a/b", `a\b`, "a\x00b"} {
		err := ValidateSegment(name)
		require.Error(t, err, "name %q", name)
		assert.True(t, IsKind(err, KindBadRequest))
	}
}

func TestEnsureDirectory(t *testing.T) {
	alloc, err := NewPathAllocator(t.TempDir())
	require.NoError(t, err)

	created, err := alloc.EnsureDirectory(alloc.Root(), "math")
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Stat(filepath.Join(alloc.Root(), "math"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	created, err = alloc.EnsureDirectory(alloc.Root(), "math")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureDirectoryRejectsTraversal(t *testing.T) {
	alloc, err := NewPathAllocator(t.TempDir())
	require.NoError(t, err)

	_, err = alloc.EnsureDirectory(alloc.Root(), "../escape")
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestEnsureDirectorySerialized(t *testing.T) {
	alloc, err := NewPathAllocator(t.TempDir())
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := alloc.EnsureDirectory(alloc.Root(), "contested")
			if err == nil {
				results <- created
			}
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	total := 0
	for created := range results {
		total++
		if created {
			winners++
		}
	}
	assert.Equal(t, workers, total)
	assert.Equal(t, 1, winners)
}

func TestResolveUploadTarget(t *testing.T) {
	alloc, err := NewPathAllocator(t.TempDir())
	require.NoError(t, err)

	target, err := alloc.ResolveUploadTarget("IT", "Programming", "Go", "Basics")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(alloc.Root(), "IT", "Programming", "Go", "Basics"), target)

	_, err = alloc.ResolveUploadTarget("IT", "..", "Go", "Basics")
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestEnsureHierarchy(t *testing.T) {
	alloc, err := NewPathAllocator(t.TempDir())
	require.NoError(t, err)

	created, err := alloc.EnsureCategory("IT")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = alloc.EnsureSubcategory("IT", "Programming")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = alloc.EnsureCourse("IT", "Programming", "Go")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = alloc.EnsureSection("IT", "Programming", "Go", "Basics")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = alloc.EnsureCourse("IT", "Programming", "Go")
	require.NoError(t, err)
	assert.False(t, created)
}

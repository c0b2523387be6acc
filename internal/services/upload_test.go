package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type insertedItem struct {
	Name         string
	IsPublic     bool
	ResourceType string
	ResourceName string
	SectionID    string
}

type fakeUploadCatalog struct {
	sectionCourse map[string]string
	sectionNames  map[string]string
	paths         map[string]PathComponents

	inserted []insertedItem
	totals   []int64
}

func (f *fakeUploadCatalog) SectionCourseID(sectionID string) (string, error) {
	courseID, ok := f.sectionCourse[sectionID]
	if !ok {
		return "", ErrIllegalParameter("Section id is incorrect")
	}
	return courseID, nil
}

func (f *fakeUploadCatalog) SectionName(sectionID string) (string, error) {
	name, ok := f.sectionNames[sectionID]
	if !ok {
		return "", ErrIllegalParameter("Section id is incorrect")
	}
	return name, nil
}

func (f *fakeUploadCatalog) CoursePathComponents(courseID string) (PathComponents, error) {
	path, ok := f.paths[courseID]
	if !ok {
		return PathComponents{}, ErrIllegalParameter("Course id is incorrect")
	}
	return path, nil
}

func (f *fakeUploadCatalog) InsertItem(name string, isPublic bool, resourceType, resourceName, sectionID string) (string, error) {
	f.inserted = append(f.inserted, insertedItem{
		Name:         name,
		IsPublic:     isPublic,
		ResourceType: resourceType,
		ResourceName: resourceName,
		SectionID:    sectionID,
	})
	return "item-1", nil
}

func (f *fakeUploadCatalog) ApplyUploadTotals(courseID string, seconds int64) error {
	f.totals = append(f.totals, seconds)
	return nil
}

func newTestPipeline(t *testing.T) (*UploadPipeline, *fakeUploadCatalog) {
	t.Helper()
	alloc, err := NewPathAllocator(t.TempDir())
	require.NoError(t, err)
	store, err := NewContentStore(t.TempDir())
	require.NoError(t, err)
	catalog := &fakeUploadCatalog{
		sectionCourse: map[string]string{"sec-1": "course-1"},
		sectionNames:  map[string]string{"sec-1": "Basics"},
		paths: map[string]PathComponents{
			"course-1": {Category: "IT", Subcategory: "Programming", Course: "Go"},
		},
	}
	return &UploadPipeline{Paths: alloc, Store: store, Catalog: catalog}, catalog
}

func TestUploadDocument(t *testing.T) {
	pipeline, catalog := newTestPipeline(t)

	result, err := pipeline.Upload(UploadRequest{
		CourseID:  "course-1",
		SectionID: "sec-1",
		Name:      "Lecture notes",
		IsPublic:  true,
		FileName:  "notes.pdf",
		Size:      13,
		Payload:   strings.NewReader("lecture notes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "document", result.ResourceType)
	assert.Equal(t, int64(0), result.Seconds)

	final := filepath.Join(pipeline.Paths.Root(), "IT", "Programming", "Go", "Basics", "notes.pdf", "notes.pdf")
	content, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "lecture notes", string(content))

	require.Len(t, catalog.inserted, 1)
	assert.Equal(t, "Lecture notes", catalog.inserted[0].Name)
	assert.Equal(t, "notes.pdf", catalog.inserted[0].ResourceName)
	assert.True(t, catalog.inserted[0].IsPublic)

	// One material, no running time.
	require.Len(t, catalog.totals, 1)
	assert.Equal(t, int64(0), catalog.totals[0])
}

func TestUploadDuplicateFileName(t *testing.T) {
	pipeline, catalog := newTestPipeline(t)

	fileDir := filepath.Join(pipeline.Paths.Root(), "IT", "Programming", "Go", "Basics", "notes.pdf")
	require.NoError(t, os.MkdirAll(fileDir, 0o755))

	_, err := pipeline.Upload(UploadRequest{
		CourseID:  "course-1",
		SectionID: "sec-1",
		Name:      "Lecture notes",
		FileName:  "notes.pdf",
		Size:      13,
		Payload:   strings.NewReader("lecture notes"),
	})
	assert.True(t, IsKind(err, KindDuplicateResource))
	assert.Empty(t, catalog.inserted)
	assert.Empty(t, catalog.totals)
}

func TestUploadSectionCourseMismatch(t *testing.T) {
	pipeline, catalog := newTestPipeline(t)

	_, err := pipeline.Upload(UploadRequest{
		CourseID:  "other-course",
		SectionID: "sec-1",
		FileName:  "notes.pdf",
		Size:      13,
		Payload:   strings.NewReader("x"),
	})
	assert.True(t, IsKind(err, KindBadRequest))
	assert.Empty(t, catalog.inserted)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	pipeline, catalog := newTestPipeline(t)

	_, err := pipeline.Upload(UploadRequest{
		CourseID:  "course-1",
		SectionID: "sec-1",
		FileName:  "malware.exe",
		Size:      10,
		Payload:   strings.NewReader("x"),
	})
	assert.True(t, IsKind(err, KindBadRequest))
	assert.Empty(t, catalog.inserted)

	// Nothing was written on the rejected path.
	entries, err := os.ReadDir(filepath.Join(pipeline.Paths.Root()))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	_, err := pipeline.Upload(UploadRequest{
		CourseID:  "course-1",
		SectionID: "sec-1",
		FileName:  "big.mp4",
		Size:      MaxUploadBytes + 1,
		Payload:   strings.NewReader("x"),
	})
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestUploadCorruptVideoFailsAfterCommit(t *testing.T) {
	pipeline, catalog := newTestPipeline(t)

	_, err := pipeline.Upload(UploadRequest{
		CourseID:  "course-1",
		SectionID: "sec-1",
		FileName:  "lesson.mp4",
		Size:      10,
		Payload:   strings.NewReader("not an mp4"),
	})
	assert.True(t, IsKind(err, KindUploadFailed))
	// The aggregates never move for a video whose duration could not
	// be read; in particular it is not counted as a material.
	assert.Empty(t, catalog.totals)
}

func TestClassifyUpload(t *testing.T) {
	resourceType, err := classifyUpload("lesson.MP4", 10)
	require.NoError(t, err)
	assert.Equal(t, "video", resourceType)

	for _, name := range []string{"a.doc", "b.docx", "c.pdf"} {
		resourceType, err := classifyUpload(name, 10)
		require.NoError(t, err)
		assert.Equal(t, "document", resourceType)
	}

	_, err = classifyUpload("", 10)
	assert.True(t, IsKind(err, KindBadRequest))

	_, err = classifyUpload("notes.pdf", 0)
	assert.True(t, IsKind(err, KindBadRequest))
}

package services

import (
	"io"
	"path/filepath"
	"strings"
)

// MaxUploadBytes caps a single upload at 100 MiB.
const MaxUploadBytes = 100 << 20

var allowedExtensions = map[string]string{
	".mp4":  "video",
	".doc":  "document",
	".docx": "document",
	".pdf":  "document",
}

// UploadCatalog is the metadata surface the pipeline needs. *Catalog
// satisfies it.
type UploadCatalog interface {
	SectionCourseID(sectionID string) (string, error)
	SectionName(sectionID string) (string, error)
	CoursePathComponents(courseID string) (PathComponents, error)
	InsertItem(name string, isPublic bool, resourceType, resourceName, sectionID string) (string, error)
	ApplyUploadTotals(courseID string, seconds int64) error
}

// UploadRequest carries one file destined for a course section.
type UploadRequest struct {
	CourseID  string
	SectionID string
	Name      string
	IsPublic  bool
	FileName  string
	Size      int64
	Payload   io.Reader
}

// UploadPipeline runs the steps of publishing one file, strictly in
// order: resolve and cross-check the destination, validate the file,
// allocate its directory, persist the bytes, record the metadata, then
// fold the upload into the course aggregates. Each step runs only
// after the previous one succeeded.
type UploadPipeline struct {
	Paths   *PathAllocator
	Store   *ContentStore
	Catalog UploadCatalog
}

type UploadResult struct {
	ItemID       string
	ResourceType string
	Seconds      int64
}

func (p *UploadPipeline) Upload(req UploadRequest) (UploadResult, error) {
	// Step 1: the section must belong to the stated course.
	courseID, err := p.Catalog.SectionCourseID(req.SectionID)
	if err != nil {
		return UploadResult{}, err
	}
	if courseID != req.CourseID {
		return UploadResult{}, ErrBadRequest("Section doesn't belong to this course")
	}

	// Step 2: validate before any filesystem or catalog write.
	resourceType, err := classifyUpload(req.FileName, req.Size)
	if err != nil {
		return UploadResult{}, err
	}
	if err := ValidateSegment(req.FileName); err != nil {
		return UploadResult{}, err
	}

	// Step 3: allocate the file's own directory under the section. An
	// existing directory means this filename was already uploaded here.
	path, err := p.Catalog.CoursePathComponents(req.CourseID)
	if err != nil {
		return UploadResult{}, err
	}
	sectionName, err := p.Catalog.SectionName(req.SectionID)
	if err != nil {
		return UploadResult{}, err
	}
	sectionDir, err := p.Paths.ResolveUploadTarget(path.Category, path.Subcategory, path.Course, sectionName)
	if err != nil {
		return UploadResult{}, err
	}
	created, err := p.Paths.EnsureDirectory(sectionDir, req.FileName)
	if err != nil {
		return UploadResult{}, err
	}
	if !created {
		return UploadResult{}, ErrDuplicateResource("File already exists")
	}
	targetDir := filepath.Join(sectionDir, req.FileName)

	// Step 4: persist the bytes.
	staged, err := p.Store.Stage(req.Payload, req.FileName)
	if err != nil {
		return UploadResult{}, ErrUploadFailed("Upload failed")
	}
	finalPath, err := p.Store.Commit(staged, targetDir)
	if err != nil {
		p.Store.Discard(staged)
		return UploadResult{}, ErrUploadFailed("Upload failed")
	}

	// Step 5: record the item.
	itemID, err := p.Catalog.InsertItem(req.Name, req.IsPublic, resourceType, req.FileName, req.SectionID)
	if err != nil {
		return UploadResult{}, err
	}

	// Step 6: fold into the course aggregates. Only videos carry time.
	var seconds int64
	if resourceType == "video" {
		seconds, err = p.Store.ProbeDuration(finalPath)
		if err != nil {
			return UploadResult{}, ErrUploadFailed("Upload failed")
		}
	}
	if err := p.Catalog.ApplyUploadTotals(req.CourseID, seconds); err != nil {
		return UploadResult{}, err
	}
	return UploadResult{ItemID: itemID, ResourceType: resourceType, Seconds: seconds}, nil
}

func classifyUpload(fileName string, size int64) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", ErrBadRequest("File name is empty")
	}
	if size <= 0 {
		return "", ErrBadRequest("File is empty")
	}
	if size > MaxUploadBytes {
		return "", ErrBadRequest("File exceeds the 100 MiB limit")
	}
	resourceType, ok := allowedExtensions[strings.ToLower(filepath.Ext(fileName))]
	if !ok {
		return "", ErrBadRequest("File type is not supported")
	}
	return resourceType, nil
}

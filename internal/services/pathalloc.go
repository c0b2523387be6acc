package services

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PathAllocator maps hierarchy names (category / subcategory / course /
// section) to directories under a fixed storage root and creates them
// exclusively. The sibling directory's presence is the authoritative
// duplicate check for every hierarchy level; catalog rows are inserted
// only after the directory was confirmed absent-then-created.
type PathAllocator struct {
	root string

	// Serializes the check-then-create sequence so two concurrent
	// callers cannot both observe "absent".
	mu sync.Mutex
}

func NewPathAllocator(root string) (*PathAllocator, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &PathAllocator{root: abs}, nil
}

func (p *PathAllocator) Root() string {
	return p.root
}

// ValidateSegment rejects names that are not plain path segments, so a
// crafted name can never escape the storage root.
func ValidateSegment(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBadRequest("empty name")
	}
	if name == "." || name == ".." {
		return ErrBadRequest("invalid name")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrBadRequest("invalid name")
	}
	return nil
}

// ResolveUploadTarget composes the section directory path. Pure path
// composition, no I/O.
func (p *PathAllocator) ResolveUploadTarget(category, subcategory, course, section string) (string, error) {
	segments := []string{category, subcategory, course, section}
	for _, segment := range segments {
		if err := ValidateSegment(segment); err != nil {
			return "", err
		}
	}
	return filepath.Join(p.root, category, subcategory, course, section), nil
}

// EnsureDirectory checks for parentPath/childName and creates it
// (including missing ancestors) when absent. It reports created=false
// without mutation when the directory already exists; callers use the
// flag to reject duplicates. The sequence is mutually exclusive across
// concurrent callers.
func (p *PathAllocator) EnsureDirectory(parentPath, childName string) (bool, error) {
	if err := ValidateSegment(childName); err != nil {
		return false, err
	}
	path := filepath.Join(parentPath, childName)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

func (p *PathAllocator) EnsureCategory(category string) (bool, error) {
	return p.EnsureDirectory(p.root, category)
}

func (p *PathAllocator) EnsureSubcategory(category, subcategory string) (bool, error) {
	if err := ValidateSegment(category); err != nil {
		return false, err
	}
	return p.EnsureDirectory(filepath.Join(p.root, category), subcategory)
}

func (p *PathAllocator) EnsureCourse(category, subcategory, course string) (bool, error) {
	for _, segment := range []string{category, subcategory} {
		if err := ValidateSegment(segment); err != nil {
			return false, err
		}
	}
	return p.EnsureDirectory(filepath.Join(p.root, category, subcategory), course)
}

func (p *PathAllocator) EnsureSection(category, subcategory, course, section string) (bool, error) {
	for _, segment := range []string{category, subcategory, course} {
		if err := ValidateSegment(segment); err != nil {
			return false, err
		}
	}
	return p.EnsureDirectory(filepath.Join(p.root, category, subcategory, course), section)
}

// ItemPath composes the final on-disk location of an item's file. Each
// uploaded file lives in a directory named after it, created fresh by
// the upload pipeline.
func (p *PathAllocator) ItemPath(category, subcategory, course, section, resourceName string) (string, error) {
	target, err := p.ResolveUploadTarget(category, subcategory, course, section)
	if err != nil {
		return "", err
	}
	if err := ValidateSegment(resourceName); err != nil {
		return "", err
	}
	return filepath.Join(target, resourceName, resourceName), nil
}

package services

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	mp4 "github.com/abema/go-mp4"
	"github.com/google/uuid"
)

// ContentStore owns the byte side of uploads: files are written to a
// staging directory first, then moved into their allocated directory
// once metadata is recorded.
type ContentStore struct {
	stagingDir string
}

func NewContentStore(stagingDir string) (*ContentStore, error) {
	abs, err := filepath.Abs(stagingDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &ContentStore{stagingDir: abs}, nil
}

// StagedFile is an upload parked in the staging directory.
type StagedFile struct {
	Path string
	Name string
}

// Stage copies the payload to a staging file. The on-disk name carries
// a random prefix so two concurrent uploads of the same filename never
// collide before commit.
func (s *ContentStore) Stage(payload io.Reader, fileName string) (StagedFile, error) {
	if err := ValidateSegment(fileName); err != nil {
		return StagedFile{}, err
	}
	path := filepath.Join(s.stagingDir, uuid.NewString()+"_"+fileName)
	out, err := os.Create(path)
	if err != nil {
		return StagedFile{}, err
	}
	if _, err := io.Copy(out, payload); err != nil {
		out.Close()
		os.Remove(path)
		return StagedFile{}, err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return StagedFile{}, err
	}
	return StagedFile{Path: path, Name: fileName}, nil
}

// Commit moves a staged file into targetDir under its original name.
func (s *ContentStore) Commit(staged StagedFile, targetDir string) (string, error) {
	final := filepath.Join(targetDir, staged.Name)
	if err := os.Rename(staged.Path, final); err != nil {
		return "", err
	}
	return final, nil
}

// Discard drops a staged file that will not be committed.
func (s *ContentStore) Discard(staged StagedFile) {
	os.Remove(staged.Path)
}

// ProbeDuration returns the playback length of an .mp4 file in whole
// seconds, read from the movie header. Non-video files report zero and
// are not opened at all. A payload the probe cannot read a movie
// header from is an error, never a zero duration.
func (s *ContentStore) ProbeDuration(path string) (int64, error) {
	if !strings.EqualFold(filepath.Ext(path), ".mp4") {
		return 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	info, err := mp4.Probe(file)
	if err != nil {
		return 0, err
	}
	if info.Timescale == 0 {
		return 0, errors.New("mp4: no movie header")
	}
	return int64(info.Duration / uint64(info.Timescale)), nil
}

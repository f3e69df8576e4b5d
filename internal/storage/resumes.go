// Package storage keeps uploaded resume files on local disk.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrResumeMissing is returned when a recorded resume file is gone from disk.
var ErrResumeMissing = errors.New("resume file not found on server")

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SafeFileName replaces every character outside [a-zA-Z0-9._-] with an
// underscore. A blank name becomes resume-<id>.pdf.
func SafeFileName(id uint, original string) string {
	name := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if strings.TrimSpace(original) == "" || name == "." || name == "/" {
		return fmt.Sprintf("resume-%d.pdf", id)
	}
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// StoredResume describes a file written by ResumeStore.Save.
type StoredResume struct {
	FileName string
	Path     string
}

// ResumeStore writes resumes as <dir>/<id>_<safe name>.
type ResumeStore struct {
	dir string
}

// NewResumeStore returns a store rooted at dir. The directory is created on
// first write.
func NewResumeStore(dir string) *ResumeStore {
	if dir == "" {
		dir = filepath.Join("uploads", "resumes")
	}
	return &ResumeStore{dir: dir}
}

// Dir returns the absolute storage root when it can be resolved.
func (s *ResumeStore) Dir() string {
	if abs, err := filepath.Abs(s.dir); err == nil {
		return abs
	}
	return s.dir
}

// Save writes data for applicant id, replacing any file of the same name.
func (s *ResumeStore) Save(id uint, originalName string, data []byte) (StoredResume, error) {
	root := s.Dir()
	if err := os.MkdirAll(root, 0o750); err != nil {
		return StoredResume{}, fmt.Errorf("create resume dir: %w", err)
	}

	safe := SafeFileName(id, originalName)
	target := filepath.Join(root, fmt.Sprintf("%d_%s", id, safe))

	tmp := filepath.Join(root, ".upload-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return StoredResume{}, fmt.Errorf("write resume: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return StoredResume{}, fmt.Errorf("store resume: %w", err)
	}
	return StoredResume{FileName: safe, Path: target}, nil
}

// Read loads the file at path, which must live under the store root.
func (s *ResumeStore) Read(path string) ([]byte, error) {
	if !s.contains(path) {
		return nil, ErrResumeMissing
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrResumeMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	return data, nil
}

// Remove deletes the file at path. A missing file is not an error.
func (s *ResumeStore) Remove(path string) error {
	if path == "" || !s.contains(path) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove resume: %w", err)
	}
	return nil
}

func (s *ResumeStore) contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.Dir(), abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

package gradebook

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the course list as a single JSON document, the way the
// desktop predecessor kept its data file under the user's home directory.
type FileStore struct {
	path string
}

// DefaultDataPath returns the conventional location of the data file.
func DefaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "data.json")
	}
	return filepath.Join(home, ".gestor-notas", "data.json")
}

// NewFileStore creates a file store and ensures the parent directory exists.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("data file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads and validates the data file. A missing file means no prior
// data, not an error; a file that fails schema validation is reported rather
// than silently dropped.
func (s *FileStore) Load(ctx context.Context) ([]*Course, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading data file: %w", err)
	}

	if err := ValidateCourseList(data); err != nil {
		return nil, err
	}

	var courses []*Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("unmarshal data file: %w", err)
	}
	return courses, nil
}

// Save writes the course list atomically: to a temp file first, then a
// rename over the previous document.
func (s *FileStore) Save(ctx context.Context, courses []*Course) error {
	data, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal courses: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

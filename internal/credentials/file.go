package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFile is the default location of the credentials document
const DefaultFile = "wifi.json"

// FileStore keeps credentials in a JSON document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFile
	}
	return &FileStore{path: path}
}

// Location returns the file path
func (s *FileStore) Location() string {
	return s.path
}

// Load reads and validates the stored record.
func (s *FileStore) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load", Location: s.path, Err: err}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, &StorageError{Op: "load", Location: s.path, Err: fmt.Errorf("failed to parse credentials file: %w", err)}
	}

	return creds.WithOrigin(s.path), nil
}

// Save writes the record atomically (temporary file, then rename).
func (s *FileStore) Save(c *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c == nil {
		return &StorageError{Op: "save", Location: s.path, Err: errors.New("nil credentials")}
	}

	data, err := json.Marshal(c)
	if err != nil {
		return &StorageError{Op: "save", Location: s.path, Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return &StorageError{Op: "save", Location: s.path, Err: fmt.Errorf("failed to create directory: %w", err)}
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return &StorageError{Op: "save", Location: s.path, Err: fmt.Errorf("failed to write temporary file: %w", err)}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &StorageError{Op: "save", Location: s.path, Err: err}
	}

	return nil
}

// Clear deletes the document. A missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "clear", Location: s.path, Err: err}
	}
	return nil
}

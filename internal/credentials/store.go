package credentials

import (
	"errors"
	"fmt"
)

// Store persists a single credentials record.
type Store interface {
	// Load returns the stored credentials or ErrNotFound.
	Load() (*Credentials, error)

	// Save replaces the stored record.
	Save(c *Credentials) error

	// Clear removes the stored record. Clearing an empty store is a no-op.
	Clear() error

	// Location describes where the record lives (file path, database path).
	Location() string
}

// StorageError reports a persistence failure.
type StorageError struct {
	Op       string // "load", "save" or "clear"
	Location string
	Err      error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("could not %s credentials at %s: %v", e.Op, e.Location, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError checks if an error is a persistence failure
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// LoadOrNil loads credentials, degrading every failure to "none present".
// The second return value is the load error, if any, for logging.
func LoadOrNil(s Store) (*Credentials, error) {
	creds, err := s.Load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return creds, nil
}

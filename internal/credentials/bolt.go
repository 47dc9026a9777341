package credentials

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	settingsBucket    = []byte("settings")
	wifiConnectionKey = []byte("wifiConnection")
)

// BoltStore keeps credentials inside a bbolt database, next to other device settings.
type BoltStore struct {
	path string
	db   *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, &StorageError{Op: "open", Location: path, Err: err}
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, &StorageError{Op: "open", Location: path, Err: err}
	}

	return &BoltStore{path: path, db: db}, nil
}

// Location returns the database path
func (s *BoltStore) Location() string {
	return s.path
}

// Load reads the stored record.
func (s *BoltStore) Load() (*Credentials, error) {
	var creds *Credentials

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(settingsBucket)
		if bucket == nil {
			return nil
		}

		payload := bucket.Get(wifiConnectionKey)
		if payload == nil || bytes.Equal(payload, []byte("null")) {
			return nil
		}

		var c Credentials
		if err := json.Unmarshal(payload, &c); err != nil {
			return fmt.Errorf("could not unmarshal data: %w", err)
		}
		creds = &c

		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "load", Location: s.path, Err: err}
	}

	if creds == nil {
		return nil, ErrNotFound
	}

	return creds.WithOrigin(s.path), nil
}

// Save replaces the stored record.
func (s *BoltStore) Save(c *Credentials) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return &StorageError{Op: "save", Location: s.path, Err: err}
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(settingsBucket)
		if err != nil {
			return err
		}
		return bucket.Put(wifiConnectionKey, payload)
	})
	if err != nil {
		return &StorageError{Op: "save", Location: s.path, Err: err}
	}

	return nil
}

// Clear removes the stored record.
func (s *BoltStore) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(settingsBucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete(wifiConnectionKey)
	})
	if err != nil {
		return &StorageError{Op: "clear", Location: s.path, Err: err}
	}
	return nil
}

// Close closes the underlying database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

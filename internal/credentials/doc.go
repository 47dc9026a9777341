// Package credentials holds the wifi credential record and its persistence.
//
// A Credentials value is validated when it is built: both the SSID and the
// password must be non-empty. Values are never mutated after construction; a
// new submission replaces the old record wholesale.
//
// Two Store implementations are provided:
//   - FileStore: a JSON document ({"ssid": ..., "password": ...}) written atomically
//   - BoltStore: a bbolt database holding the same JSON document under a fixed key
//
// A failed Load is reported as ErrNotFound (nothing stored) or a *StorageError.
// Callers at the top of the daemon treat both as "no credentials present".
package credentials

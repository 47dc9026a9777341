package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySSID is returned when building credentials without an SSID
	ErrEmptySSID = errors.New("ssid cannot be empty")

	// ErrEmptyPassword is returned when building credentials without a password
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrNotFound is returned by Store.Load when nothing is stored
	ErrNotFound = errors.New("no credentials stored")
)

// Credentials identifies a WPA/WPA2-personal network.
type Credentials struct {
	SSID     string
	Password string

	// Origin is the storage location the record was read from or written to.
	// Empty for credentials that have not been persisted yet.
	Origin string
}

// New validates and builds credentials.
func New(ssid, password string) (*Credentials, error) {
	if ssid == "" {
		return nil, ErrEmptySSID
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	return &Credentials{
		SSID:     ssid,
		Password: password,
	}, nil
}

// WithOrigin returns a copy of c recorded as stored at origin.
func (c *Credentials) WithOrigin(origin string) *Credentials {
	return &Credentials{
		SSID:     c.SSID,
		Password: c.Password,
		Origin:   origin,
	}
}

// Equal reports whether both records name the same network and password.
func (c *Credentials) Equal(other *Credentials) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.SSID == other.SSID && c.Password == other.Password
}

// String masks the password so credentials can be logged safely.
func (c *Credentials) String() string {
	return fmt.Sprintf("ssid=%q password=%s", c.SSID, strings.Repeat("*", len(c.Password)))
}

// record is the persisted form. It carries exactly the two required fields.
type record struct {
	SSID     *string `json:"ssid"`
	Password *string `json:"password"`
}

// MarshalJSON encodes the persisted record.
func (c *Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{SSID: &c.SSID, Password: &c.Password})
}

// UnmarshalJSON decodes a persisted record, applying the same validation as New.
func (c *Credentials) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if r.SSID == nil {
		return fmt.Errorf("record is missing ssid: %w", ErrEmptySSID)
	}
	if r.Password == nil {
		return fmt.Errorf("record is missing password: %w", ErrEmptyPassword)
	}

	parsed, err := New(*r.SSID, *r.Password)
	if err != nil {
		return err
	}

	c.SSID = parsed.SSID
	c.Password = parsed.Password
	return nil
}

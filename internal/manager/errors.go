package manager

import (
	"errors"
	"fmt"
)

// ErrorKind classifies connection failures
type ErrorKind int

const (
	// KindNoCredentials means a connection was attempted with nothing stored
	KindNoCredentials ErrorKind = iota
	// KindIncorrectPassword means the access point rejected the password
	KindIncorrectPassword
	// KindNoAccessPointFound means the SSID is out of range or does not exist
	KindNoAccessPointFound
	// KindUnknownConnectionFailure covers timeouts and any other terminal driver status
	KindUnknownConnectionFailure
	// KindStorageFailure means persisting credentials failed
	KindStorageFailure
)

// Sentinels matched by errors.Is against a *ConnectionError of the same kind
var (
	ErrNoCredentials            = errors.New("no credentials")
	ErrIncorrectPassword        = errors.New("incorrect password")
	ErrNoAccessPointFound       = errors.New("no access point found")
	ErrUnknownConnectionFailure = errors.New("unknown connection failure")
	ErrStorageFailure           = errors.New("storage failure")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNoCredentials:
		return ErrNoCredentials
	case KindIncorrectPassword:
		return ErrIncorrectPassword
	case KindNoAccessPointFound:
		return ErrNoAccessPointFound
	case KindUnknownConnectionFailure:
		return ErrUnknownConnectionFailure
	case KindStorageFailure:
		return ErrStorageFailure
	default:
		return nil
	}
}

// String returns a human-readable name for the kind
func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// ConnectionError is a failed connection attempt or provisioning cycle
type ConnectionError struct {
	Kind ErrorKind
	SSID string
	Code int   // raw driver status, for KindUnknownConnectionFailure
	Err  error // underlying driver or storage error, if any
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	msg := e.Kind.String()
	if e.SSID != "" {
		msg = fmt.Sprintf("%s (ssid %q)", msg, e.SSID)
	}
	if e.Kind == KindUnknownConnectionFailure {
		msg = fmt.Sprintf("%s: status %d", msg, e.Code)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind
func (e *ConnectionError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of a connection error
func KindOf(err error) (ErrorKind, bool) {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return connErr.Kind, true
	}
	return 0, false
}

// IsNoCredentials checks if an error is a connection attempt without credentials
func IsNoCredentials(err error) bool {
	return errors.Is(err, ErrNoCredentials)
}

// IsIncorrectPassword checks if an error is a rejected password
func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

// IsNoAccessPointFound checks if an error is a missing network
func IsNoAccessPointFound(err error) bool {
	return errors.Is(err, ErrNoAccessPointFound)
}

// IsUnknownConnectionFailure checks if an error is an unclassified failure
func IsUnknownConnectionFailure(err error) bool {
	return errors.Is(err, ErrUnknownConnectionFailure)
}

// IsStorageFailure checks if an error is a persistence failure
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

package provisioning

import (
	"errors"
	"fmt"
)

// Rejection messages sent to the client in the error page
const (
	MsgEmptySubmission = "Password and SSID cannot be empty"
	MsgMissingField    = "Missing either password or ssid query param in submission"
	MsgEmptyPassword   = "Password cannot be empty"
	MsgEmptySSID       = "SSID cannot be empty"
)

// RequestErrorKind classifies a malformed request
type RequestErrorKind int

const (
	// KindFraming means the bytes on the wire were not a parseable request
	KindFraming RequestErrorKind = iota
	// KindUnsupportedMethod means the method was neither GET nor POST
	KindUnsupportedMethod
	// KindEmptyBody means a POST arrived without a body
	KindEmptyBody
	// KindMissingField means ssid or password was absent from the form
	KindMissingField
	// KindEmptyPassword means the password field was empty
	KindEmptyPassword
	// KindEmptySSID means the ssid field was empty
	KindEmptySSID
)

// String returns a human-readable name for the kind
func (k RequestErrorKind) String() string {
	switch k {
	case KindFraming:
		return "Framing Error"
	case KindUnsupportedMethod:
		return "Unsupported Method"
	case KindEmptyBody:
		return "Empty Body"
	case KindMissingField:
		return "Missing Field"
	case KindEmptyPassword:
		return "Empty Password"
	case KindEmptySSID:
		return "Empty SSID"
	default:
		return fmt.Sprintf("RequestErrorKind(%d)", k)
	}
}

// RequestError is a MalformedRequest: the client was answered with 400 (when
// the connection allowed it) and the portal keeps waiting for another one.
type RequestError struct {
	Kind    RequestErrorKind
	Message string // message shown to the client
	Err     error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed request: %s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("malformed request: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *RequestError) Unwrap() error {
	return e.Err
}

func newFramingError(message string, err error) *RequestError {
	return &RequestError{Kind: KindFraming, Message: message, Err: err}
}

// IsMalformedRequest checks if an error is a rejected request
func IsMalformedRequest(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// RequestErrorKindOf returns the kind of a rejected request
func RequestErrorKindOf(err error) (RequestErrorKind, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind, true
	}
	return 0, false
}

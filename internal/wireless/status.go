package wireless

import "fmt"

// Raw driver status codes
const (
	CodeIdle          = 0
	CodeConnecting    = 1
	CodeGotAddress    = 3
	CodeConnectFail   = -1
	CodeNoAccessPoint = -2
	CodeWrongPassword = -3
)

// StatusKind classifies a driver status
type StatusKind int

const (
	// StatusOther is any status that is not one of the definitive kinds below
	StatusOther StatusKind = iota
	// StatusGotAddress means the station has joined and obtained an address
	StatusGotAddress
	// StatusWrongPassword means the access point rejected the password
	StatusWrongPassword
	// StatusNoAccessPoint means no access point with the requested SSID was found
	StatusNoAccessPoint
)

// String returns a human-readable name for the kind
func (k StatusKind) String() string {
	switch k {
	case StatusOther:
		return "other"
	case StatusGotAddress:
		return "got-address"
	case StatusWrongPassword:
		return "wrong-password"
	case StatusNoAccessPoint:
		return "no-ap-found"
	default:
		return fmt.Sprintf("StatusKind(%d)", k)
	}
}

// Status is the last status reported by a persona.
type Status struct {
	Kind StatusKind
	Code int // raw driver code, kept for diagnostics
}

// GotAddress returns the status of a station that obtained an address
func GotAddress() Status {
	return Status{Kind: StatusGotAddress, Code: CodeGotAddress}
}

// WrongPassword returns the status of a rejected password
func WrongPassword() Status {
	return Status{Kind: StatusWrongPassword, Code: CodeWrongPassword}
}

// NoAccessPoint returns the status of a network that could not be found
func NoAccessPoint() Status {
	return Status{Kind: StatusNoAccessPoint, Code: CodeNoAccessPoint}
}

// Other returns a non-definitive status carrying the raw driver code
func Other(code int) Status {
	return Status{Kind: StatusOther, Code: code}
}

// Idle is the status of a persona with no connection in progress
func Idle() Status {
	return Other(CodeIdle)
}

// Connecting is the status of an association in progress
func Connecting() Status {
	return Other(CodeConnecting)
}

// FromCode classifies a raw driver code.
func FromCode(code int) Status {
	switch code {
	case CodeGotAddress:
		return GotAddress()
	case CodeWrongPassword:
		return WrongPassword()
	case CodeNoAccessPoint:
		return NoAccessPoint()
	default:
		return Other(code)
	}
}

func (s Status) String() string {
	if s.Kind == StatusOther {
		return fmt.Sprintf("other(%d)", s.Code)
	}
	return s.Kind.String()
}

package manager

import "fmt"

// State is the connection state held by the Manager
type State int

const (
	// StateDisconnected is the initial state
	StateDisconnected State = iota
	// StateConnecting means a station connection attempt is in progress
	StateConnecting
	// StateConnected means the station obtained an address
	StateConnected
	// StateAccessPoint means the device is advertising its own network for provisioning
	StateAccessPoint
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAccessPoint:
		return "access-point"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

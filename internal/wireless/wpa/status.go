package wpa

import "github.com/muurk/wifiprov/internal/wireless"

// IEEE 802.11 reason code for a 4-way handshake timeout, which is what
// wpa_supplicant reports when the PSK is wrong. Negative when locally generated.
const reasonHandshakeTimeout = 15

// stateCode maps a wpa_supplicant interface state to a raw driver code.
func stateCode(state string) int {
	switch state {
	case "disconnected", "inactive", "interface_disabled":
		return wireless.CodeIdle
	case "scanning", "authenticating", "associating", "associated",
		"4way_handshake", "group_handshake", "completed":
		return wireless.CodeConnecting
	default:
		return wireless.CodeConnectFail
	}
}

// observation is what a status read gathers from the bus and the kernel.
type observation struct {
	state       string
	reason      int32
	hasAddress  bool
	ssid        string // network the persona was asked to join, if any
	ssidVisible bool
}

func classify(o observation) wireless.Status {
	switch {
	case o.state == "completed" && o.hasAddress:
		return wireless.GotAddress()
	case o.state != "completed" && (o.reason == reasonHandshakeTimeout || o.reason == -reasonHandshakeTimeout):
		return wireless.WrongPassword()
	case (o.state == "disconnected" || o.state == "inactive") && o.ssid != "" && !o.ssidVisible:
		return wireless.NoAccessPoint()
	default:
		return wireless.Other(stateCode(o.state))
	}
}

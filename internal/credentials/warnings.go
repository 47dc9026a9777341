package credentials

import "fmt"

// 802.11 and WPA limits
const (
	MaxSSIDBytes       = 32
	MinPassphraseBytes = 8
	MaxPassphraseBytes = 63
)

// Warnings reports credentials a WPA network would refuse. They are still
// accepted and stored; the connection attempt decides.
func (c *Credentials) Warnings() []string {
	var warnings []string
	if len(c.SSID) > MaxSSIDBytes {
		warnings = append(warnings, fmt.Sprintf("SSID is %d bytes, networks allow at most %d", len(c.SSID), MaxSSIDBytes))
	}
	if n := len(c.Password); n < MinPassphraseBytes || n > MaxPassphraseBytes {
		warnings = append(warnings, fmt.Sprintf("password is %d bytes, WPA passphrases are %d to %d", n, MinPassphraseBytes, MaxPassphraseBytes))
	}
	return warnings
}

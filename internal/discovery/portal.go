package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Portal is a device found in provisioning mode
type Portal struct {
	// Instance is the mDNS instance name (e.g., "wifiprov-kitchen")
	Instance string

	// Hostname is the mDNS hostname (e.g., "kitchen.local.")
	Hostname string

	// IP is the portal address, IPv4 preferred
	IP string

	// Port is the portal port (typically 80)
	Port int

	// Metadata contains the TXT records ("path", "ap", "version")
	Metadata map[string]string

	// DiscoveredAt is when the portal was seen
	DiscoveredAt time.Time
}

// String returns a human-readable description of the portal
func (p *Portal) String() string {
	if ap := p.AccessPointSSID(); ap != "" {
		return fmt.Sprintf("Portal %s (%s) at %s:%d via %q", p.Instance, p.Hostname, p.IP, p.Port, ap)
	}
	return fmt.Sprintf("Portal %s (%s) at %s:%d", p.Instance, p.Hostname, p.IP, p.Port)
}

// BaseURL returns the HTTP base URL of the portal
func (p *Portal) BaseURL() string {
	host := p.IP
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("http://%s:%d%s", host, p.Port, p.Path())
}

// Path returns the advertised form path, "/" by default
func (p *Portal) Path() string {
	if path := p.GetMetadata("path"); path != "" {
		return path
	}
	return "/"
}

// AccessPointSSID returns the advertised provisioning network name
func (p *Portal) AccessPointSSID() string {
	return p.GetMetadata("ap")
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Portal) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}

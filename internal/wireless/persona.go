package wireless

import (
	"fmt"
	"strings"
)

// Persona is one hardware role of the wireless driver.
type Persona interface {
	// Active reports whether the persona is currently enabled.
	Active() (bool, error)

	// SetActive requests the persona be enabled or disabled. The change may
	// take effect asynchronously; use the package-level SetActive to wait.
	SetActive(active bool) error

	// Associated reports whether a station has joined an access point.
	Associated() (bool, error)

	// Connect starts joining the network identified by ssid.
	Connect(ssid, password string) error

	// Disconnect drops any association. It is a no-op when not associated.
	Disconnect() error

	// Status returns the driver's immediate status.
	Status() (Status, error)

	// ConfigureAccessPoint sets the network advertised by an access point persona.
	ConfigureAccessPoint(ssid, password string) error

	// AddressInfo describes the persona's network addresses. Used for logging.
	AddressInfo() (AddressInfo, error)
}

// Link is the single owned handle over both personas.
type Link struct {
	Station     Persona
	AccessPoint Persona
}

// Validate checks that both personas are present
func (l Link) Validate() error {
	if l.Station == nil {
		return fmt.Errorf("wireless link has no station persona")
	}
	if l.AccessPoint == nil {
		return fmt.Errorf("wireless link has no access point persona")
	}
	return nil
}

// AddressInfo describes the addresses bound to a persona
type AddressInfo struct {
	Interface    string
	HardwareAddr string
	Addresses    []string
}

func (a AddressInfo) String() string {
	addrs := "none"
	if len(a.Addresses) > 0 {
		addrs = strings.Join(a.Addresses, ", ")
	}
	if a.HardwareAddr == "" {
		return fmt.Sprintf("%s [%s]", a.Interface, addrs)
	}
	return fmt.Sprintf("%s (%s) [%s]", a.Interface, a.HardwareAddr, addrs)
}

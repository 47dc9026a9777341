// Package wireless describes the capability surface of a wireless driver.
//
// A device exposes two hardware personas: a station, which joins an existing
// access point as a client, and an access point, which advertises its own
// network. The personas are mutually exclusive in active state; the Link type
// bundles both so a single owner can be injected wherever the driver is needed.
//
// # Status
//
// Driver status is a closed set of kinds (see StatusKind). Anything the driver
// reports that is not an address, a password mismatch or a missing network is
// carried as StatusOther with the raw driver code preserved.
//
// # Activation
//
// Toggling a persona is not assumed to be synchronous. SetActive requests the
// change and then polls the persona until the driver reports the new state, or
// the configured timeout passes:
//
//	err := wireless.SetActive(ctx, link.Station, true, wireless.WaitOptions{
//	    PollInterval: 100 * time.Millisecond,
//	    Timeout:      10 * time.Second,
//	})
//
// # Implementations
//
// The wpa subpackage drives wpa_supplicant over D-Bus. SimulatedPersona is an
// in-memory driver for tests and for running the daemon on a development
// machine without radio hardware.
package wireless

// Package wpa implements wireless.Persona on top of wpa_supplicant's D-Bus API.
//
// Each persona is bound to one network interface (typically wlan0 for the
// station and uap0 for the access point). A persona is "active" while the
// interface is registered with wpa_supplicant; activating it registers the
// interface with CreateInterface, deactivating removes it again.
//
// The access point persona relies on wpa_supplicant's AP mode (network
// mode 2), which the driver must support.
package wpa

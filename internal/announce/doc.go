// Package announce advertises the provisioning portal over mDNS.
//
// While the device is in access point mode the manager registers a
// "_wifiprov._tcp" service on the local segment so phones and the
// `wifiprov discover` command can find the portal without knowing its
// address. The registration is withdrawn as soon as the portal returns.
//
// TXT records carry the portal path and the access point SSID:
//
//	path=/
//	ap=PicoWifi Adhoc
//	version=1.0.0
package announce

// Package config loads and saves the wifiprov daemon configuration.
//
// Values are resolved in this order, highest first:
//
//  1. command-line flags that were set explicitly
//  2. WIFIPROV_* environment variables (WIFIPROV_AP_SSID for ap-ssid)
//  3. the YAML config file
//  4. built-in defaults
//
// The config file is optional. Without --config, "wifiprov.yaml" is looked
// up in the working directory, the user config directory and /etc/wifiprov.
//
// # File Format
//
//	credentials-file: /var/lib/wifiprov/wifi.json
//	credentials-backend: file
//	driver: wpa
//	station-interface: wlan0
//	ap-interface: uap0
//	ap-ssid: PicoWifi Adhoc
//	ap-password: "1234567890"
//	connection-timeout: 30s
//	poll-interval: 1s
//	port: 80
//	mdns: true
//
// Wifi credentials are never stored in this file; they live in the
// credential store named by credentials-file.
package config

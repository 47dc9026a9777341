package wpa

import (
	"encoding/hex"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

// bss is one access point seen by the last scan
type bss struct {
	SSID  string
	BSSID string
}

func getBSS(obj dbus.BusObject) (*bss, error) {
	call := obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, bssName)
	if call.Err != nil {
		return nil, errors.Errorf("could not get all properties: %v", call.Err)
	}

	if len(call.Body) == 0 {
		return nil, errors.Errorf("empty reply to properties request")
	}

	props, ok := call.Body[0].(map[string]dbus.Variant)
	if !ok {
		return nil, errors.Errorf("could not convert output")
	}

	return bssFromProperties(props)
}

func bssFromProperties(props map[string]dbus.Variant) (*bss, error) {
	b := bss{}

	val, ok := props["SSID"]
	if !ok {
		return nil, errors.Errorf("mandatory property SSID was missing")
	}
	ssid, ok := val.Value().([]byte)
	if !ok {
		return nil, errors.Errorf("could not convert SSID to string: %v", val)
	}
	b.SSID = string(ssid)

	if val, ok := props["BSSID"]; ok {
		if bssid, ok := val.Value().([]byte); ok {
			b.BSSID = hex.EncodeToString(bssid)
		}
	}

	return &b, nil
}

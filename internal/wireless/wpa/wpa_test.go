package wpa

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"

	"github.com/muurk/wifiprov/internal/wireless"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		obs  observation
		want wireless.Status
	}{
		{
			name: "completed with address",
			obs:  observation{state: "completed", hasAddress: true, ssid: "home"},
			want: wireless.GotAddress(),
		},
		{
			name: "completed waiting for dhcp",
			obs:  observation{state: "completed", ssid: "home"},
			want: wireless.Other(wireless.CodeConnecting),
		},
		{
			name: "handshake failure",
			obs:  observation{state: "disconnected", reason: 15, ssid: "home", ssidVisible: true},
			want: wireless.WrongPassword(),
		},
		{
			name: "locally generated handshake failure",
			obs:  observation{state: "scanning", reason: -15, ssid: "home"},
			want: wireless.WrongPassword(),
		},
		{
			name: "network not in scan results",
			obs:  observation{state: "disconnected", ssid: "cafe"},
			want: wireless.NoAccessPoint(),
		},
		{
			name: "network visible but not joined yet",
			obs:  observation{state: "disconnected", ssid: "home", ssidVisible: true},
			want: wireless.Other(wireless.CodeIdle),
		},
		{
			name: "nothing requested",
			obs:  observation{state: "inactive"},
			want: wireless.Other(wireless.CodeIdle),
		},
		{
			name: "associating",
			obs:  observation{state: "4way_handshake", ssid: "home"},
			want: wireless.Other(wireless.CodeConnecting),
		},
		{
			name: "unknown state",
			obs:  observation{state: "bogus", ssid: "home", ssidVisible: true},
			want: wireless.Other(wireless.CodeConnectFail),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.obs); got != tt.want {
				t.Errorf("classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBSSFromProperties(t *testing.T) {
	props := map[string]dbus.Variant{
		"SSID":  dbus.MakeVariant([]byte("home")),
		"BSSID": dbus.MakeVariant([]byte{0xaa, 0xbb, 0xcc, 0x00, 0x11, 0x22}),
	}

	b, err := bssFromProperties(props)
	if err != nil {
		t.Fatalf("bssFromProperties() error = %v", err)
	}
	if b.SSID != "home" {
		t.Errorf("SSID = %q, want home", b.SSID)
	}
	if b.BSSID != "aabbcc001122" {
		t.Errorf("BSSID = %q", b.BSSID)
	}

	if _, err := bssFromProperties(map[string]dbus.Variant{}); err == nil {
		t.Error("missing SSID should fail")
	}
}

// replyObject answers every call with a fixed body
type replyObject struct {
	dbus.BusObject
	body []interface{}
}

func (o replyObject) Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	return &dbus.Call{Method: method, Body: o.body}
}

func TestGetBSS(t *testing.T) {
	tests := []struct {
		name     string
		body     []interface{}
		wantSSID string
		wantErr  bool
	}{
		{
			name:     "properties",
			body:     []interface{}{map[string]dbus.Variant{"SSID": dbus.MakeVariant([]byte("home"))}},
			wantSSID: "home",
		},
		{name: "empty reply", body: nil, wantErr: true},
		{name: "unexpected type", body: []interface{}{"home"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := getBSS(replyObject{body: tt.body})
			if (err != nil) != tt.wantErr {
				t.Fatalf("getBSS() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && b.SSID != tt.wantSSID {
				t.Errorf("SSID = %q, want %q", b.SSID, tt.wantSSID)
			}
		})
	}
}

func TestErrorName(t *testing.T) {
	if got := errorName(dbus.Error{Name: errNotConnected}); got != errNotConnected {
		t.Errorf("errorName(value) = %q", got)
	}
	if got := errorName(&dbus.Error{Name: errInterfaceUnknown}); got != errInterfaceUnknown {
		t.Errorf("errorName(pointer) = %q", got)
	}
	if got := errorName(errors.New("plain")); got != "" {
		t.Errorf("errorName(plain) = %q", got)
	}
}

func TestHasIPv4(t *testing.T) {
	tests := []struct {
		addrs []string
		want  bool
	}{
		{[]string{"192.168.1.20/24"}, true},
		{[]string{"fe80::1/64"}, false},
		{[]string{"169.254.3.4/16"}, false},
		{[]string{"fe80::1/64", "10.0.0.2/8"}, true},
		{nil, false},
	}

	for _, tt := range tests {
		if got := hasIPv4(tt.addrs); got != tt.want {
			t.Errorf("hasIPv4(%v) = %v, want %v", tt.addrs, got, tt.want)
		}
	}
}

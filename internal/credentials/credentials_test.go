package credentials

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		ssid     string
		password string
		wantErr  error
	}{
		{name: "valid", ssid: "home", password: "hunter22"},
		{name: "empty ssid", ssid: "", password: "hunter22", wantErr: ErrEmptySSID},
		{name: "empty password", ssid: "home", password: "", wantErr: ErrEmptyPassword},
		{name: "both empty reports ssid first", ssid: "", password: "", wantErr: ErrEmptySSID},
		{name: "spaces are kept", ssid: "my net", password: "a b c", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.ssid, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error = %v", err)
			}
			if c.SSID != tt.ssid || c.Password != tt.password {
				t.Errorf("New() = %+v, want ssid=%q password=%q", c, tt.ssid, tt.password)
			}
			if c.Origin != "" {
				t.Errorf("New().Origin = %q, want empty", c.Origin)
			}
		})
	}
}

func TestCredentialsString(t *testing.T) {
	c, _ := New("home", "secret")
	s := c.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaked password: %s", s)
	}
	if !strings.Contains(s, "home") {
		t.Errorf("String() = %s, should contain ssid", s)
	}
}

func TestCredentialsEqual(t *testing.T) {
	a, _ := New("home", "secret")
	b := a.WithOrigin("/tmp/wifi.json")
	c, _ := New("home", "other")

	if !a.Equal(b) {
		t.Error("Equal() should ignore origin")
	}
	if a.Equal(c) {
		t.Error("Equal() should compare passwords")
	}

	var nilCreds *Credentials
	if !nilCreds.Equal(nil) {
		t.Error("nil should equal nil")
	}
	if a.Equal(nil) {
		t.Error("non-nil should not equal nil")
	}
}

func TestCredentialsJSON(t *testing.T) {
	c, _ := New("home", "secret")
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"ssid":"home","password":"secret"}` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestCredentialsUnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "missing ssid", input: `{"password":"x"}`, wantErr: ErrEmptySSID},
		{name: "missing password", input: `{"ssid":"x"}`, wantErr: ErrEmptyPassword},
		{name: "empty ssid", input: `{"ssid":"","password":"x"}`, wantErr: ErrEmptySSID},
		{name: "empty password", input: `{"ssid":"x","password":""}`, wantErr: ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Credentials
			err := json.Unmarshal([]byte(tt.input), &c)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Unmarshal() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	var c Credentials
	if err := json.Unmarshal([]byte(`not json`), &c); err == nil {
		t.Error("Unmarshal() should fail on malformed document")
	}
}

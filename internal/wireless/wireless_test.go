package wireless

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFromCode(t *testing.T) {
	tests := []struct {
		code int
		want StatusKind
	}{
		{CodeGotAddress, StatusGotAddress},
		{CodeWrongPassword, StatusWrongPassword},
		{CodeNoAccessPoint, StatusNoAccessPoint},
		{CodeIdle, StatusOther},
		{CodeConnecting, StatusOther},
		{CodeConnectFail, StatusOther},
		{42, StatusOther},
	}

	for _, tt := range tests {
		got := FromCode(tt.code)
		if got.Kind != tt.want {
			t.Errorf("FromCode(%d).Kind = %v, want %v", tt.code, got.Kind, tt.want)
		}
		if got.Code != tt.code {
			t.Errorf("FromCode(%d).Code = %d, raw code must be preserved", tt.code, got.Code)
		}
	}
}

func TestStatusString(t *testing.T) {
	if got := Other(-1).String(); got != "other(-1)" {
		t.Errorf("Other(-1).String() = %q", got)
	}
	if got := WrongPassword().String(); got != "wrong-password" {
		t.Errorf("WrongPassword().String() = %q", got)
	}
}

var fastWait = WaitOptions{PollInterval: time.Millisecond, Timeout: 50 * time.Millisecond}

func TestSetActiveIdempotent(t *testing.T) {
	p := NewSimulatedPersona("wlan0")

	if err := SetActive(context.Background(), p, false, fastWait); err != nil {
		t.Fatalf("SetActive(false) on inactive persona error = %v", err)
	}
	if p.Calls().SetActive != 0 {
		t.Error("SetActive(false) on inactive persona should not touch the driver")
	}

	if err := SetActive(context.Background(), p, true, fastWait); err != nil {
		t.Fatalf("SetActive(true) error = %v", err)
	}
	if err := SetActive(context.Background(), p, true, fastWait); err != nil {
		t.Fatalf("second SetActive(true) error = %v", err)
	}
	if got := p.Calls().SetActive; got != 1 {
		t.Errorf("driver SetActive calls = %d, want 1", got)
	}
	if !p.IsActive() {
		t.Error("persona should be active")
	}
}

func TestSetActiveWaitsForDriver(t *testing.T) {
	p := NewSimulatedPersona("wlan0")
	p.ActivationDelay = 3

	if err := SetActive(context.Background(), p, true, fastWait); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if !p.IsActive() {
		t.Error("SetActive() returned before the persona became active")
	}
}

func TestSetActiveTimeout(t *testing.T) {
	p := NewSimulatedPersona("wlan0")
	p.ActivationDelay = 1000

	err := SetActive(context.Background(), p, true, WaitOptions{PollInterval: time.Millisecond, Timeout: 5 * time.Millisecond})
	if !errors.Is(err, ErrActivationTimeout) {
		t.Errorf("SetActive() error = %v, want ErrActivationTimeout", err)
	}
}

func TestSetActiveContextCancelled(t *testing.T) {
	p := NewSimulatedPersona("wlan0")
	p.ActivationDelay = 1000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SetActive(ctx, p, true, WaitOptions{PollInterval: time.Millisecond, Timeout: time.Second})
	if err == nil {
		t.Fatal("SetActive() with cancelled context should fail")
	}
}

type brokenPersona struct {
	SimulatedPersona
	activeErr error
	reads     int
}

func (b *brokenPersona) Active() (bool, error) {
	b.reads++
	if b.reads > 1 {
		return false, b.activeErr
	}
	return false, nil
}

func TestSetActiveDriverError(t *testing.T) {
	driverErr := errors.New("bus gone")
	p := &brokenPersona{activeErr: driverErr}

	err := SetActive(context.Background(), p, true, fastWait)
	if !errors.Is(err, driverErr) {
		t.Errorf("SetActive() error = %v, want %v", err, driverErr)
	}
	if p.reads != 2 {
		t.Errorf("Active() reads = %d, a driver error should stop polling", p.reads)
	}
}

func TestSimulatedDisconnectIdempotent(t *testing.T) {
	p := NewSimulatedPersona("wlan0")
	for i := 0; i < 2; i++ {
		if err := p.Disconnect(); err != nil {
			t.Fatalf("Disconnect() #%d error = %v", i, err)
		}
	}
	if st, _ := p.Status(); st != Idle() {
		t.Errorf("Status() after Disconnect() = %v, want idle", st)
	}
	if assoc, _ := p.Associated(); assoc {
		t.Error("persona should not be associated")
	}
}

func TestSimulatedNetworks(t *testing.T) {
	tests := []struct {
		name     string
		ssid     string
		password string
		want     []StatusKind
	}{
		{
			name:     "joins after connect polls",
			ssid:     "home",
			password: "secret123",
			want:     []StatusKind{StatusOther, StatusOther, StatusGotAddress, StatusGotAddress},
		},
		{
			name:     "wrong password",
			ssid:     "home",
			password: "nope",
			want:     []StatusKind{StatusWrongPassword},
		},
		{
			name:     "unknown network",
			ssid:     "cafe",
			password: "secret123",
			want:     []StatusKind{StatusNoAccessPoint},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, station, _ := NewSimulatedLink(map[string]string{"home": "secret123"})
			if err := SetActive(context.Background(), link.Station, true, fastWait); err != nil {
				t.Fatal(err)
			}
			if err := station.Connect(tt.ssid, tt.password); err != nil {
				t.Fatalf("Connect() error = %v", err)
			}
			for i, want := range tt.want {
				st, _ := station.Status()
				if st.Kind != want {
					t.Errorf("Status() #%d = %v, want %v", i, st, want)
				}
			}
		})
	}
}

func TestSimulatedScriptRepeatsLast(t *testing.T) {
	p := NewSimulatedPersona("wlan0")
	p.Script = []Status{Connecting(), WrongPassword()}
	_ = p.SetActive(true)
	_ = p.Connect("home", "x")

	want := []Status{Connecting(), WrongPassword(), WrongPassword()}
	for i, w := range want {
		if got, _ := p.Status(); got != w {
			t.Errorf("Status() #%d = %v, want %v", i, got, w)
		}
	}
}

func TestSimulatedConnectInactive(t *testing.T) {
	p := NewSimulatedPersona("wlan0")
	if err := p.Connect("home", "x"); !errors.Is(err, ErrPersonaInactive) {
		t.Errorf("Connect() on inactive persona error = %v", err)
	}
}

func TestLinkValidate(t *testing.T) {
	if err := (Link{}).Validate(); err == nil {
		t.Error("empty link should not validate")
	}
	link, _, _ := NewSimulatedLink(nil)
	if err := link.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestAddressInfoString(t *testing.T) {
	info := AddressInfo{Interface: "wlan0", HardwareAddr: "aa:bb", Addresses: []string{"10.0.0.2/24"}}
	if got := info.String(); got != "wlan0 (aa:bb) [10.0.0.2/24]" {
		t.Errorf("String() = %q", got)
	}
	if got := (AddressInfo{Interface: "uap0"}).String(); got != "uap0 [none]" {
		t.Errorf("String() = %q", got)
	}
}

package wireless

import (
	"errors"
	"sync"
)

// ErrPersonaInactive is returned by SimulatedPersona.Connect on a disabled persona
var ErrPersonaInactive = errors.New("persona is not active")

// SimulatedPersona is an in-memory Persona.
//
// Status is answered from Script when it is set (one entry per Status call
// after Connect, the last entry repeating). Otherwise it is derived from
// Networks: unknown SSID reports no-ap-found, a password mismatch reports
// wrong-password, and a match reports connecting for ConnectPolls calls
// before reporting got-address. With neither set the persona stays
// connecting forever.
type SimulatedPersona struct {
	Name            string
	Script          []Status
	Networks        map[string]string
	ConnectPolls    int
	ActivationDelay int // Active polls before a requested state takes effect

	mu           sync.Mutex
	active       bool
	pending      bool
	pendingState bool
	pendingPolls int
	connecting   bool
	associated   bool
	ssid         string
	password     string
	apSSID       string
	apPassword   string
	scriptPos    int
	connectPolls int
	calls        SimCalls
}

// SimCalls counts the calls made on a SimulatedPersona
type SimCalls struct {
	SetActive            int
	Connect              int
	Disconnect           int
	Status               int
	ConfigureAccessPoint int
}

var _ Persona = (*SimulatedPersona)(nil)

// NewSimulatedPersona creates an inactive simulated persona
func NewSimulatedPersona(name string) *SimulatedPersona {
	return &SimulatedPersona{Name: name}
}

// NewSimulatedLink creates a link whose station knows the given networks.
func NewSimulatedLink(networks map[string]string) (Link, *SimulatedPersona, *SimulatedPersona) {
	station := NewSimulatedPersona("wlan0")
	station.Networks = networks
	station.ConnectPolls = 2
	ap := NewSimulatedPersona("uap0")
	return Link{Station: station, AccessPoint: ap}, station, ap
}

// Active implements Persona
func (p *SimulatedPersona) Active() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending {
		if p.pendingPolls > 0 {
			p.pendingPolls--
		} else {
			p.applyActive(p.pendingState)
		}
	}
	return p.active, nil
}

// SetActive implements Persona
func (p *SimulatedPersona) SetActive(active bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.SetActive++
	if p.ActivationDelay <= 0 {
		p.applyActive(active)
		return nil
	}
	p.pending = true
	p.pendingState = active
	p.pendingPolls = p.ActivationDelay
	return nil
}

func (p *SimulatedPersona) applyActive(active bool) {
	p.pending = false
	p.active = active
	if !active {
		p.connecting = false
		p.associated = false
	}
}

// Associated implements Persona
func (p *SimulatedPersona) Associated() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.associated, nil
}

// Connect implements Persona
func (p *SimulatedPersona) Connect(ssid, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.Connect++
	if !p.active {
		return ErrPersonaInactive
	}
	p.ssid = ssid
	p.password = password
	p.connecting = true
	p.associated = false
	p.scriptPos = 0
	p.connectPolls = 0
	return nil
}

// Disconnect implements Persona
func (p *SimulatedPersona) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.Disconnect++
	p.connecting = false
	p.associated = false
	return nil
}

// Status implements Persona
func (p *SimulatedPersona) Status() (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.Status++
	if !p.connecting {
		return Idle(), nil
	}

	var st Status
	switch {
	case len(p.Script) > 0:
		i := p.scriptPos
		if i >= len(p.Script) {
			i = len(p.Script) - 1
		}
		p.scriptPos++
		st = p.Script[i]
	case p.Networks != nil:
		st = p.networkStatus()
	default:
		st = Connecting()
	}

	p.associated = st.Kind == StatusGotAddress
	return st, nil
}

func (p *SimulatedPersona) networkStatus() Status {
	want, ok := p.Networks[p.ssid]
	if !ok {
		return NoAccessPoint()
	}
	if want != p.password {
		return WrongPassword()
	}
	if p.connectPolls < p.ConnectPolls {
		p.connectPolls++
		return Connecting()
	}
	return GotAddress()
}

// ConfigureAccessPoint implements Persona
func (p *SimulatedPersona) ConfigureAccessPoint(ssid, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.ConfigureAccessPoint++
	p.apSSID = ssid
	p.apPassword = password
	return nil
}

// AddressInfo implements Persona
func (p *SimulatedPersona) AddressInfo() (AddressInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	info := AddressInfo{Interface: p.Name, HardwareAddr: "02:00:00:00:00:01"}
	switch {
	case p.associated:
		info.Addresses = []string{"10.0.0.42/24"}
	case p.active && p.apSSID != "":
		info.Addresses = []string{"192.168.1.1/24"}
	}
	return info, nil
}

// Calls returns a snapshot of the call counters
func (p *SimulatedPersona) Calls() SimCalls {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// AccessPointConfig returns the last network configured with ConfigureAccessPoint
func (p *SimulatedPersona) AccessPointConfig() (ssid, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apSSID, p.apPassword
}

// IsActive reports the active flag without advancing a pending activation
func (p *SimulatedPersona) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

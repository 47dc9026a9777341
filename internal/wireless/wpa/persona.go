package wpa

import (
	"net"
	"sync"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"

	"github.com/muurk/wifiprov/internal/wireless"
)

// Mode selects which role a persona plays
type Mode int

const (
	// ModeStation joins existing networks
	ModeStation Mode = iota
	// ModeAccessPoint advertises its own network
	ModeAccessPoint
)

// wpa_supplicant network mode for an access point
const apNetworkMode uint32 = 2

// Default channel 1
const apFrequency uint32 = 2412

// Persona drives one interface through wpa_supplicant.
type Persona struct {
	sup    *Supplicant
	ifname string
	mode   Mode

	mu   sync.Mutex
	ssid string
}

var _ wireless.Persona = (*Persona)(nil)

// Persona returns a persona bound to ifname
func (s *Supplicant) Persona(ifname string, mode Mode) *Persona {
	return &Persona{sup: s, ifname: ifname, mode: mode}
}

// Link builds a wireless link from a station and an access point interface.
func (s *Supplicant) Link(stationIface, apIface string) wireless.Link {
	return wireless.Link{
		Station:     s.Persona(stationIface, ModeStation),
		AccessPoint: s.Persona(apIface, ModeAccessPoint),
	}
}

func (p *Persona) iface() (dbus.BusObject, error) {
	path, err := p.sup.getInterface(p.ifname)
	if err != nil {
		return nil, errors.Errorf("could not find interface %v: %v", p.ifname, err)
	}
	return p.sup.object(path), nil
}

// Active implements wireless.Persona
func (p *Persona) Active() (bool, error) {
	_, err := p.sup.getInterface(p.ifname)
	if err != nil {
		if errorName(err) == errInterfaceUnknown {
			return false, nil
		}
		return false, errors.Errorf("could not query interface %v: %v", p.ifname, err)
	}
	return true, nil
}

// SetActive implements wireless.Persona
func (p *Persona) SetActive(active bool) error {
	if active {
		return p.sup.createInterface(p.ifname)
	}

	path, err := p.sup.getInterface(p.ifname)
	if err != nil {
		if errorName(err) == errInterfaceUnknown {
			return nil
		}
		return errors.Errorf("could not query interface %v: %v", p.ifname, err)
	}
	return p.sup.removeInterface(path)
}

func (p *Persona) state(obj dbus.BusObject) (string, error) {
	v, err := obj.GetProperty(interfaceName + ".State")
	if err != nil {
		return "", errors.Errorf("could not get state: %v", err)
	}

	state, ok := v.Value().(string)
	if !ok {
		return "", errors.Errorf("could not convert state: %v", v)
	}

	return state, nil
}

// Associated implements wireless.Persona
func (p *Persona) Associated() (bool, error) {
	obj, err := p.iface()
	if err != nil {
		return false, err
	}

	state, err := p.state(obj)
	if err != nil {
		return false, err
	}

	return state == "completed", nil
}

func (p *Persona) addNetwork(obj dbus.BusObject, args map[string]interface{}) error {
	call := obj.Call(interfaceName+".RemoveAllNetworks", 0)
	if call.Err != nil {
		return errors.Errorf("could not remove all networks: %v", call.Err)
	}

	call = obj.Call(interfaceName+".AddNetwork", 0, args)
	if call.Err != nil {
		return errors.Errorf("could not add network: %v", call.Err)
	}

	var network dbus.ObjectPath
	if err := call.Store(&network); err != nil {
		return errors.Errorf("could not store value: %v", err)
	}

	call = obj.Call(interfaceName+".SelectNetwork", 0, network)
	if call.Err != nil {
		return errors.Errorf("could not select network: %v", call.Err)
	}

	return nil
}

// Connect implements wireless.Persona
func (p *Persona) Connect(ssid, password string) error {
	obj, err := p.iface()
	if err != nil {
		return err
	}

	err = p.addNetwork(obj, map[string]interface{}{
		"ssid": ssid,
		"psk":  password,
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.ssid = ssid
	p.mu.Unlock()

	return nil
}

// Disconnect implements wireless.Persona
func (p *Persona) Disconnect() error {
	p.mu.Lock()
	p.ssid = ""
	p.mu.Unlock()

	path, err := p.sup.getInterface(p.ifname)
	if err != nil {
		if errorName(err) == errInterfaceUnknown {
			return nil
		}
		return errors.Errorf("could not query interface %v: %v", p.ifname, err)
	}

	call := p.sup.object(path).Call(interfaceName+".Disconnect", 0)
	if call.Err != nil && errorName(call.Err) != errNotConnected {
		return errors.Errorf("could not disconnect: %v", call.Err)
	}

	return nil
}

// Status implements wireless.Persona
func (p *Persona) Status() (wireless.Status, error) {
	obj, err := p.iface()
	if err != nil {
		return wireless.Status{}, err
	}

	state, err := p.state(obj)
	if err != nil {
		return wireless.Status{}, err
	}

	o := observation{state: state}

	if v, err := obj.GetProperty(interfaceName + ".DisconnectReason"); err == nil {
		if reason, ok := v.Value().(int32); ok {
			o.reason = reason
		}
	}

	p.mu.Lock()
	o.ssid = p.ssid
	p.mu.Unlock()

	if state == "completed" {
		info, err := p.AddressInfo()
		if err == nil {
			o.hasAddress = hasIPv4(info.Addresses)
		}
	}

	if o.ssid != "" && (state == "disconnected" || state == "inactive") {
		o.ssidVisible = p.ssidVisible(obj, o.ssid)
	}

	return classify(o), nil
}

func (p *Persona) ssidVisible(obj dbus.BusObject, ssid string) bool {
	v, err := obj.GetProperty(interfaceName + ".BSSs")
	if err != nil {
		return false
	}

	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return false
	}

	for _, path := range paths {
		bss, err := getBSS(p.sup.object(path))
		if err != nil {
			continue
		}
		if bss.SSID == ssid {
			return true
		}
	}

	return false
}

// ConfigureAccessPoint implements wireless.Persona
func (p *Persona) ConfigureAccessPoint(ssid, password string) error {
	if p.mode != ModeAccessPoint {
		return errors.Errorf("interface %v is not an access point persona", p.ifname)
	}

	obj, err := p.iface()
	if err != nil {
		return err
	}

	return p.addNetwork(obj, map[string]interface{}{
		"ssid":      ssid,
		"psk":       password,
		"mode":      apNetworkMode,
		"key_mgmt":  "WPA-PSK",
		"frequency": apFrequency,
	})
}

// AddressInfo implements wireless.Persona
func (p *Persona) AddressInfo() (wireless.AddressInfo, error) {
	info := wireless.AddressInfo{Interface: p.ifname}

	iface, err := net.InterfaceByName(p.ifname)
	if err != nil {
		return info, errors.Errorf("could not find interface %v: %v", p.ifname, err)
	}
	info.HardwareAddr = iface.HardwareAddr.String()

	addrs, err := iface.Addrs()
	if err != nil {
		return info, errors.Errorf("could not list addresses of %v: %v", p.ifname, err)
	}
	for _, addr := range addrs {
		info.Addresses = append(info.Addresses, addr.String())
	}

	return info, nil
}

func hasIPv4(addrs []string) bool {
	for _, a := range addrs {
		ip, _, err := net.ParseCIDR(a)
		if err != nil {
			ip = net.ParseIP(a)
		}
		if ip != nil && ip.To4() != nil && !ip.IsLinkLocalUnicast() {
			return true
		}
	}
	return false
}

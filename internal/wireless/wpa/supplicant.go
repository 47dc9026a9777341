package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

const (
	service       = "fi.w1.wpa_supplicant1"
	rootPath      = dbus.ObjectPath("/fi/w1/wpa_supplicant1")
	interfaceName = service + ".Interface"
	bssName       = service + ".BSS"

	errInterfaceUnknown = service + ".InterfaceUnknown"
	errNotConnected     = service + ".NotConnected"
)

// Supplicant is a connection to wpa_supplicant on the system bus.
type Supplicant struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Open connects to the system bus.
func Open() (*Supplicant, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, errors.Errorf("could not connect to system bus: %v", err)
	}

	return &Supplicant{
		conn: conn,
		obj:  conn.Object(service, rootPath),
	}, nil
}

// Close closes the bus connection
func (s *Supplicant) Close() error {
	return s.conn.Close()
}

func (s *Supplicant) getInterface(ifname string) (dbus.ObjectPath, error) {
	call := s.obj.Call(service+".GetInterface", 0, ifname)
	if call.Err != nil {
		return "", call.Err
	}

	var path dbus.ObjectPath
	if err := call.Store(&path); err != nil {
		return "", errors.Errorf("could not store value: %v", err)
	}

	return path, nil
}

func (s *Supplicant) createInterface(ifname string) error {
	call := s.obj.Call(service+".CreateInterface", 0, map[string]interface{}{
		"Ifname": ifname,
	})
	if call.Err != nil {
		return errors.Errorf("could not create interface %s: %v", ifname, call.Err)
	}

	return nil
}

func (s *Supplicant) removeInterface(path dbus.ObjectPath) error {
	call := s.obj.Call(service+".RemoveInterface", 0, path)
	if call.Err != nil {
		return errors.Errorf("could not remove interface %s: %v", path, call.Err)
	}

	return nil
}

func (s *Supplicant) object(path dbus.ObjectPath) dbus.BusObject {
	return s.conn.Object(service, path)
}

// errorName returns the D-Bus error name carried by err, if any.
func errorName(err error) string {
	switch e := err.(type) {
	case dbus.Error:
		return e.Name
	case *dbus.Error:
		return e.Name
	default:
		return ""
	}
}

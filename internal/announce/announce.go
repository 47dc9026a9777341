package announce

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
)

const (
	// ServiceType is the mDNS service type of a provisioning portal
	ServiceType = "_wifiprov._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultInstancePrefix prefixes the hostname in the default instance name
	DefaultInstancePrefix = "wifiprov"
)

// registrar is the subset of *zeroconf.Server the announcer needs
type registrar interface {
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (registrar, error)

func zeroconfRegister(instance, service, domain string, port int, text []string, ifaces []net.Interface) (registrar, error) {
	return zeroconf.Register(instance, service, domain, port, text, ifaces)
}

// Announcer registers the portal service with zeroconf
type Announcer struct {
	// Instance is the service instance name shown to browsers
	Instance string

	// Text holds the TXT records, "key=value"
	Text []string

	// Interfaces restricts the announcement; nil means all multicast interfaces
	Interfaces []net.Interface

	register registerFunc
}

// New creates an announcer. An empty instance defaults to
// "wifiprov-<hostname>".
func New(instance string, text ...string) *Announcer {
	if instance == "" {
		instance = DefaultInstance()
	}
	return &Announcer{
		Instance: instance,
		Text:     text,
		register: zeroconfRegister,
	}
}

// DefaultInstance returns "wifiprov-<hostname>", or the prefix alone when
// the hostname is unavailable
func DefaultInstance() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return DefaultInstancePrefix
	}
	host, _, _ = strings.Cut(host, ".")
	return DefaultInstancePrefix + "-" + host
}

// Announce registers the service on port. The returned stop function
// withdraws it and may be called more than once.
func (a *Announcer) Announce(port int) (func(), error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	server, err := a.register(a.Instance, ServiceType, ServiceDomain, port, a.Text, a.Interfaces)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Announcing provisioning portal",
		zap.String("instance", a.Instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
		zap.Strings("txt", a.Text),
	)

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		server.Shutdown()
		logging.Debug("Withdrew mDNS announcement", zap.String("instance", a.Instance))
	}, nil
}

// Noop satisfies the manager's announcer when mDNS is disabled
type Noop struct{}

// Announce does nothing
func (Noop) Announce(port int) (func(), error) {
	return func() {}, nil
}

// TXT builds the standard TXT records for a portal
func TXT(accessPointSSID, version string) []string {
	text := []string{"path=/"}
	if accessPointSSID != "" {
		text = append(text, "ap="+accessPointSSID)
	}
	if version != "" {
		text = append(text, "version="+version)
	}
	return text
}

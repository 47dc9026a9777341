package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/announce"
	"github.com/muurk/wifiprov/internal/logging"
)

const (
	// DefaultScanTimeout is the default timeout for portal discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is used when an entry carries no port
	DefaultPort = 80
)

// browseFunc streams service entries until ctx is done
type browseFunc func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error

func zeroconfBrowse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}
	return resolver.Browse(ctx, service, domain, entries)
}

// Scanner handles mDNS portal discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration

	browse browseFunc
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		browse:  zeroconfBrowse,
	}
}

// ScanForPortals collects every portal seen before the timeout.
// Duplicate announcements of one instance are reported once.
func (s *Scanner) ScanForPortals(ctx context.Context) ([]*Portal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		portals []*Portal
		seen    = make(map[string]bool)
	)

	err := s.run(ctx, func(p *Portal) bool {
		mu.Lock()
		defer mu.Unlock()
		if !seen[p.Instance] {
			seen[p.Instance] = true
			portals = append(portals, p)
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	return portals, nil
}

// WaitForPortal returns the first portal with the given instance name, or
// the first portal of any name when instance is empty
func (s *Scanner) WaitForPortal(ctx context.Context, instance string) (*Portal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	found := make(chan *Portal, 1)
	err := s.run(ctx, func(p *Portal) bool {
		if instance != "" && p.Instance != instance {
			return false
		}
		select {
		case found <- p:
		default:
		}
		cancel()
		return true
	})
	if err != nil {
		return nil, err
	}

	select {
	case p := <-found:
		return p, nil
	default:
		if instance == "" {
			return nil, fmt.Errorf("no portal found within %v", s.Timeout)
		}
		return nil, fmt.Errorf("portal %q not found within %v", instance, s.Timeout)
	}
}

// run browses until ctx is done, feeding parsed portals to visit until it
// returns true
func (s *Scanner) run(ctx context.Context, visit func(*Portal) bool) error {
	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				portal := parseServiceEntry(entry)
				if portal == nil {
					continue
				}
				logging.Debug("Discovered portal", zap.Stringer("portal", portal))
				if visit(portal) {
					return
				}
			}
		}
	}()

	if err := s.browse(ctx, announce.ServiceType, announce.ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Portal.
// Returns nil when the entry has no instance name or no address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Portal {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Portal{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForPortals is a convenience function to scan with a custom timeout
func ScanForPortals(ctx context.Context, timeout time.Duration) ([]*Portal, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForPortals(ctx)
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/muurk/wifiprov/internal/announce"
	"github.com/muurk/wifiprov/internal/config"
	"github.com/muurk/wifiprov/internal/credentials"
	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/manager"
	"github.com/muurk/wifiprov/internal/provisioning"
	"github.com/muurk/wifiprov/internal/version"
	"github.com/muurk/wifiprov/internal/wireless"
	"github.com/muurk/wifiprov/internal/wireless/wpa"
)

// simNetworks are the networks the simulated driver can join (--sim-network)
var simNetworks map[string]string

// addLinkFlags registers the flags shared by commands that drive the radio.
// Names match config keys so viper picks them up.
func addLinkFlags(flags *pflag.FlagSet) {
	d := config.Default()
	flags.String("driver", d.Driver, "Wireless driver (wpa, sim)")
	flags.String("station-interface", d.StationInterface, "Station interface")
	flags.String("ap-interface", d.AccessPointInterface, "Access point interface")
	flags.String("ap-ssid", d.AccessPointSSID, "Access point network name while provisioning")
	flags.String("ap-password", d.AccessPointPassword, "Access point password while provisioning")
	flags.Duration("connection-timeout", d.ConnectionTimeout, "How long one connection attempt may take")
	flags.Duration("poll-interval", d.PollInterval, "Status polling period during a connection attempt")
	flags.Bool("mdns", d.MDNS, "Announce the portal over mDNS while provisioning")
	flags.StringToStringVar(&simNetworks, "sim-network", nil, "Network known to the sim driver, ssid=password (repeatable)")
	addPortalFlags(flags)
	addStoreFlags(flags)
}

func addPortalFlags(flags *pflag.FlagSet) {
	d := config.Default()
	flags.Int("port", d.Port, "Provisioning portal port")
	flags.Duration("read-timeout", d.ReadTimeout, "Time limit for one portal request")
	flags.String("page-file", "", "HTML form served by the portal (default: built-in page)")
	flags.String("error-page-file", "", "HTML error page with %CONTENT% placeholder (default: built-in page)")
	flags.String("success-page-file", "", "HTML page sent after an accepted submission")
}

func addStoreFlags(flags *pflag.FlagSet) {
	d := config.Default()
	flags.String("credentials-file", d.CredentialsFile, "Credential store location")
	flags.String("credentials-backend", d.CredentialsBackend, "Credential store backend (file, bolt)")
}

// loadConfig resolves the configuration for cmd and starts logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return nil, err
	}
	logging.Debug("Configuration loaded",
		zap.String("driver", cfg.Driver),
		zap.String("credentials", cfg.CredentialsFile),
		zap.Int("port", cfg.Port),
	)
	return cfg, nil
}

// openStore opens the configured credential store. close releases it.
func openStore(cfg *config.Config) (credentials.Store, func() error, error) {
	switch cfg.CredentialsBackend {
	case config.BackendBolt:
		bolt, err := credentials.OpenBoltStore(cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return bolt, bolt.Close, nil
	default:
		return credentials.NewFileStore(cfg.CredentialsFile), func() error { return nil }, nil
	}
}

// openLink returns the wireless link for the configured driver
func openLink(cfg *config.Config) (wireless.Link, func() error, error) {
	switch cfg.Driver {
	case config.DriverSim:
		link, _, _ := wireless.NewSimulatedLink(simNetworks)
		logging.Info("Using simulated wireless driver", zap.Int("networks", len(simNetworks)))
		return link, func() error { return nil }, nil
	default:
		supplicant, err := wpa.Open()
		if err != nil {
			return wireless.Link{}, nil, err
		}
		return supplicant.Link(cfg.StationInterface, cfg.AccessPointInterface), supplicant.Close, nil
	}
}

// portalConfig builds the provisioning server configuration, reading
// custom pages from disk
func portalConfig(cfg *config.Config) (*provisioning.Config, error) {
	pc := provisioning.DefaultConfig()
	pc.Port = cfg.Port
	pc.ReadTimeout = cfg.ReadTimeout

	pages := []struct {
		path string
		dst  *string
	}{
		{cfg.PageFile, &pc.Page},
		{cfg.ErrorPageFile, &pc.ErrorPage},
		{cfg.SuccessPageFile, &pc.SuccessPage},
	}
	for _, p := range pages {
		page, err := provisioning.LoadPage(p.path, *p.dst)
		if err != nil {
			return nil, err
		}
		*p.dst = page
	}

	if err := pc.Validate(); err != nil {
		return nil, err
	}
	return pc, nil
}

// newManager wires the connection manager from configuration
func newManager(cfg *config.Config, store credentials.Store, link wireless.Link, onChange func(from, to manager.State)) (*manager.Manager, error) {
	pc, err := portalConfig(cfg)
	if err != nil {
		return nil, err
	}

	var announcer manager.Announcer = announce.Noop{}
	if cfg.MDNS {
		announcer = announce.New(cfg.MDNSInstance, announce.TXT(cfg.AccessPointSSID, version.Short())...)
	}

	return manager.New(manager.Config{
		Link:  link,
		Store: store,
		NewPortal: func() (manager.Portal, error) {
			return provisioning.New(pc), nil
		},
		Announcer:           announcer,
		PortalPort:          cfg.Port,
		ConnectionTimeout:   cfg.ConnectionTimeout,
		PollInterval:        cfg.PollInterval,
		Activation:          wireless.WaitOptions{Timeout: cfg.ActivationTimeout},
		AccessPointSSID:     cfg.AccessPointSSID,
		AccessPointPassword: cfg.AccessPointPassword,
		OnStateChange:       onChange,
	})
}

// readSecret prompts for a password without echo on a terminal, or reads
// one line from stdin otherwise
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/config"
	"github.com/muurk/wifiprov/internal/credentials"
	"github.com/muurk/wifiprov/internal/discovery"
	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/manager"
	"github.com/muurk/wifiprov/internal/provisioning"
	"github.com/muurk/wifiprov/internal/ui"
)

// Command flags
var (
	stayRunning  bool
	saveServed   bool
	submitURL    string
	submitSSID   string
	submitPass   string
	instanceName string
	scanTimeout  time.Duration
	outputFormat string
)

func init() {
	addLinkFlags(runCmd.Flags())
	runCmd.Flags().BoolVar(&stayRunning, "stay", false, "Keep running after connecting until interrupted")

	addLinkFlags(monitorCmd.Flags())

	addPortalFlags(serveCmd.Flags())
	addStoreFlags(serveCmd.Flags())
	serveCmd.Flags().BoolVar(&saveServed, "save", false, "Save the received credentials to the credential store")

	submitCmd.Flags().StringVar(&submitURL, "url", "", "Portal URL (skips discovery)")
	submitCmd.Flags().StringVar(&submitSSID, "ssid", "", "Network name to submit (required)")
	submitCmd.Flags().StringVar(&submitPass, "password", "", "Network password (prompted when omitted)")
	submitCmd.Flags().StringVar(&instanceName, "instance", "", "Portal instance to discover (default: first found)")
	submitCmd.Flags().DurationVar(&scanTimeout, "timeout", discovery.DefaultScanTimeout, "Discovery timeout")
	_ = submitCmd.MarkFlagRequired("ssid")

	discoverCmd.Flags().DurationVar(&scanTimeout, "timeout", discovery.DefaultScanTimeout, "Discovery timeout")
	discoverCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(discoverCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// daemon holds what run and monitor open
type daemon struct {
	cfg     *config.Config
	manager *manager.Manager
	closers []func() error
}

func (d *daemon) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logging.Warn("Close failed", zap.Error(err))
		}
	}
}

func openDaemon(cmd *cobra.Command, onChange func(from, to manager.State)) (*daemon, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &daemon{cfg: cfg}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	d.closers = append(d.closers, closeStore)

	link, closeLink, err := openLink(cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to open wireless driver %s: %w", cfg.Driver, err)
	}
	d.closers = append(d.closers, closeLink)

	d.manager, err = newManager(cfg, store, link, onChange)
	if err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// runCmd is the daemon entry point
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the stored network, provisioning when needed",
	Long: `Connect to the network in the credential store. When nothing is stored,
or the connection fails, start the access point and serve the provisioning
form until new credentials arrive, then try again.

Returns once connected, unless --stay is given.`,
	Example: `  # Run with the wpa_supplicant driver
  wifiprov run --station-interface wlan0 --ap-interface uap0

  # Try the flow without hardware
  wifiprov run --driver sim --sim-network home=secret123 --port 8080`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	d, err := openDaemon(cmd, nil)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.manager.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	creds := d.manager.Credentials()
	fmt.Printf("Connected to %q\n", creds.SSID)

	if stayRunning {
		<-ctx.Done()
	}
	return nil
}

// monitorCmd runs the manager under the terminal UI
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the connection manager with a live status display",
	Long: `Run the same loop as 'wifiprov run' while showing the connection state,
a history of transitions and the final result in the terminal.`,
	Example: `  wifiprov monitor --driver sim --sim-network home=secret123 --port 8080`,
	RunE:    runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	var program *tea.Program
	d, err := openDaemon(cmd, func(from, to manager.State) {
		program.Send(ui.StateMsg{From: from, To: to, At: time.Now()})
	})
	if err != nil {
		return err
	}
	defer d.Close()

	model := ui.NewMonitor("wifiprov monitor",
		ui.Detail{Key: "Driver", Value: d.cfg.Driver},
		ui.Detail{Key: "Store", Value: d.cfg.CredentialsFile},
		ui.Detail{Key: "Access point", Value: d.cfg.AccessPointSSID},
		ui.Detail{Key: "Portal port", Value: fmt.Sprint(d.cfg.Port)},
	)
	program = tea.NewProgram(model, tea.WithContext(ctx))

	runErr := make(chan error, 1)
	go func() {
		err := d.manager.Run(ctx)
		runErr <- err
		program.Send(ui.DoneMsg{Err: err})
	}()

	_, err = program.Run()
	stop()
	managerErr := <-runErr

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if managerErr != nil && !errors.Is(managerErr, context.Canceled) {
		return managerErr
	}
	return nil
}

// serveCmd runs the portal alone
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the provisioning form once without touching the radio",
	Long: `Run the provisioning portal on the current network until one valid
submission arrives. The received network name is printed; with --save the
credentials are written to the credential store.`,
	Example: `  wifiprov serve --port 8080
  wifiprov serve --port 8080 --save --credentials-file ./wifi.json`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pc, err := portalConfig(cfg)
	if err != nil {
		return err
	}

	srv := provisioning.New(pc)
	if err := srv.Listen(ctx); err != nil {
		return err
	}
	fmt.Printf("Portal listening on %s\n", srv.Addr())

	creds, err := srv.Credentials(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	result := ui.NewSuccessResult("Credentials received").AddDetail("SSID", creds.SSID)

	if saveServed {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		if err := store.Save(creds); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}
		result.AddDetail("Saved to", store.Location())
	}

	ui.NewPrinter(nil).PrintResult(result)
	return nil
}

// submitCmd posts credentials to a portal
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send wifi credentials to a device in provisioning mode",
	Long: `Submit a network name and password to a device's provisioning portal.

Without --url the portal is found over mDNS; join the device's access point
network first.`,
	Example: `  # Discover the portal and prompt for the password
  wifiprov submit --ssid home

  # Explicit portal address
  wifiprov submit --url http://192.168.1.1 --ssid home --password secret123`,
	RunE: runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	password := submitPass
	if password == "" {
		var err error
		if password, err = readSecret(fmt.Sprintf("Password for %q: ", submitSSID)); err != nil {
			return err
		}
	}

	creds, err := credentials.New(submitSSID, password)
	if err != nil {
		return err
	}
	warnCredentials(creds)

	url := submitURL
	if url == "" {
		scanner := discovery.NewScanner()
		scanner.Timeout = scanTimeout
		fmt.Printf("Looking for a provisioning portal (timeout: %v)...\n", scanTimeout)

		portal, err := scanner.WaitForPortal(ctx, instanceName)
		if err != nil {
			return fmt.Errorf("%w (use --url to give the portal address)", err)
		}
		url = portal.BaseURL()
	}

	printer := ui.NewPrinter(nil)
	if err := provisioning.NewClientWithURL(url).Submit(ctx, creds); err != nil {
		hints := []string{
			"Check that this machine is joined to the device's access point",
			"The portal only accepts one submission; the device may already be connecting",
		}
		if provisioning.IsRejected(err) {
			hints = []string{"The portal rejected the submission; check the network name and password"}
		}
		printer.PrintResult(ui.NewFailureResult("Submission failed", err, hints...))
		return err
	}

	printer.PrintResult(ui.NewSuccessResult("Credentials submitted").
		AddDetail("Portal", url).
		AddDetail("SSID", creds.SSID))
	return nil
}

// discoverCmd lists portals on the local segment
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find devices in provisioning mode",
	Long: `Browse mDNS for provisioning portals and list them with their addresses.`,
	Example: `  wifiprov discover
  wifiprov discover --timeout 3s --format json`,
	RunE: runDiscover,
}

type portalJSON struct {
	Instance    string `json:"instance"`
	Hostname    string `json:"hostname"`
	URL         string `json:"url"`
	AccessPoint string `json:"access_point,omitempty"`
	Version     string `json:"version,omitempty"`
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	if outputFormat != "json" {
		fmt.Printf("Scanning for provisioning portals (timeout: %v)...\n\n", scanTimeout)
	}

	portals, err := discovery.ScanForPortals(ctx, scanTimeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if outputFormat == "json" {
		out := make([]portalJSON, 0, len(portals))
		for _, p := range portals {
			out = append(out, portalJSON{
				Instance:    p.Instance,
				Hostname:    p.Hostname,
				URL:         p.BaseURL(),
				AccessPoint: p.AccessPointSSID(),
				Version:     p.GetMetadata("version"),
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printer := ui.NewPrinter(nil)
	if len(portals) == 0 {
		printer.PrintResult(ui.NewFailureResult("No portals found", nil,
			"Join the device's access point network first",
			"Check that the device is in provisioning mode",
			"Try increasing --timeout",
		))
		return nil
	}

	for _, p := range portals {
		r := ui.NewSuccessResult(p.Instance).
			AddDetail("URL", p.BaseURL()).
			AddDetail("Host", p.Hostname)
		if ap := p.AccessPointSSID(); ap != "" {
			r.AddDetail("Access point", ap)
		}
		if v := p.GetMetadata("version"); v != "" {
			r.AddDetail("Version", v)
		}
		printer.PrintResult(r)
	}
	fmt.Println("Use 'wifiprov submit --instance <name> --ssid <network>' to provision a device")

	return nil
}

package main

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/muurk/wifiprov/internal/config"
	"github.com/muurk/wifiprov/internal/credentials"
	"github.com/muurk/wifiprov/internal/manager"
	"github.com/muurk/wifiprov/internal/provisioning"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}

func simConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Driver = config.DriverSim
	cfg.Port = freePort(t)
	cfg.MDNS = false
	cfg.CredentialsFile = filepath.Join(t.TempDir(), "wifi.json")
	cfg.PollInterval = 10 * time.Millisecond
	cfg.ConnectionTimeout = time.Second
	cfg.ActivationTimeout = time.Second
	return cfg
}

func TestOpenStoreBackends(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			cfg := simConfig(t)
			cfg.CredentialsBackend = backend

			store, closeStore, err := openStore(cfg)
			if err != nil {
				t.Fatalf("openStore() error = %v", err)
			}
			defer func() { _ = closeStore() }()

			if _, err := store.Load(); !errors.Is(err, credentials.ErrNotFound) {
				t.Errorf("empty store Load() error = %v", err)
			}
			if store.Location() != cfg.CredentialsFile {
				t.Errorf("Location() = %q", store.Location())
			}
		})
	}
}

func TestPortalConfigPages(t *testing.T) {
	cfg := simConfig(t)
	page := filepath.Join(t.TempDir(), "form.html")
	if err := os.WriteFile(page, []byte("<form>custom</form>"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg.PageFile = page

	pc, err := portalConfig(cfg)
	if err != nil {
		t.Fatalf("portalConfig() error = %v", err)
	}
	if pc.Page != "<form>custom</form>" {
		t.Errorf("Page = %q", pc.Page)
	}
	if pc.ErrorPage != provisioning.DefaultErrorPage {
		t.Error("unset error page should use the built-in page")
	}
	if pc.Port != cfg.Port || pc.ReadTimeout != cfg.ReadTimeout {
		t.Errorf("portal config = %+v", pc)
	}

	cfg.ErrorPageFile = filepath.Join(t.TempDir(), "missing.html")
	if _, err := portalConfig(cfg); err == nil {
		t.Error("missing page file should fail")
	}
}

// TestSimulatedProvisioning drives the whole daemon with the sim driver:
// no stored credentials, a submission through the real portal, then a
// connection with the saved network.
func TestSimulatedProvisioning(t *testing.T) {
	simNetworks = map[string]string{"home": "secret123"}
	t.Cleanup(func() { simNetworks = nil })

	cfg := simConfig(t)
	store, closeStore, err := openStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = closeStore() }()

	link, closeLink, err := openLink(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = closeLink() }()

	var states []manager.State
	mgr, err := newManager(cfg, store, link, func(from, to manager.State) {
		states = append(states, to)
	})
	if err != nil {
		t.Fatalf("newManager() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	client := provisioning.NewClient("127.0.0.1", cfg.Port)
	client.MaxRetries = 50
	client.RetryDelay = 20 * time.Millisecond
	client.MaxRetryDelay = 100 * time.Millisecond

	creds, _ := credentials.New("home", "secret123")
	if err := client.Submit(ctx, creds); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !mgr.Connected() {
		t.Errorf("State() = %v, want connected", mgr.State())
	}

	saved, err := store.Load()
	if err != nil || !saved.Equal(creds) {
		t.Errorf("stored credentials = %v, %v", saved, err)
	}

	want := []manager.State{manager.StateAccessPoint, manager.StateConnecting, manager.StateConnected}
	if len(states) != len(want) {
		t.Fatalf("transitions = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("transitions = %v, want %v", states, want)
			break
		}
	}
}

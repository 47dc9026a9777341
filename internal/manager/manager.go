package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/credentials"
	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/wireless"
)

const (
	// DefaultConnectionTimeout bounds one station connection attempt
	DefaultConnectionTimeout = 30 * time.Second

	// DefaultPollInterval is the status polling period during a connection attempt
	DefaultPollInterval = 1 * time.Second

	// DefaultAccessPointSSID is the network advertised while provisioning
	DefaultAccessPointSSID = "PicoWifi Adhoc"

	// DefaultAccessPointPassword is the password of the provisioning network
	DefaultAccessPointPassword = "1234567890"

	// DefaultRetryInterval is the first delay after a failed access point start or portal run
	DefaultRetryInterval = 1 * time.Second

	// DefaultMaxRetryInterval caps the delay between retries
	DefaultMaxRetryInterval = 30 * time.Second
)

// Portal collects one set of credentials. provisioning.Server implements it.
type Portal interface {
	Credentials(ctx context.Context) (*credentials.Credentials, error)
}

// Announcer advertises the portal while the device is provisioning.
type Announcer interface {
	Announce(port int) (stop func(), err error)
}

// Config holds the manager configuration
type Config struct {
	Link  wireless.Link
	Store credentials.Store

	// NewPortal creates a fresh portal for each provisioning cycle.
	NewPortal func() (Portal, error)

	// Announcer is optional.
	Announcer  Announcer
	PortalPort int

	ConnectionTimeout time.Duration
	PollInterval      time.Duration
	Activation        wireless.WaitOptions

	AccessPointSSID     string
	AccessPointPassword string

	RetryInterval    time.Duration
	MaxRetryInterval time.Duration

	// OnStateChange is called after every state transition, outside any lock.
	OnStateChange func(from, to State)
}

func (c *Config) applyDefaults() {
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = DefaultConnectionTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.AccessPointSSID == "" {
		c.AccessPointSSID = DefaultAccessPointSSID
	}
	if c.AccessPointPassword == "" {
		c.AccessPointPassword = DefaultAccessPointPassword
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.MaxRetryInterval <= 0 {
		c.MaxRetryInterval = DefaultMaxRetryInterval
	}
}

// Manager is the connection state machine.
type Manager struct {
	config Config

	// driverMu serializes every call into the wireless link.
	driverMu sync.Mutex

	mu    sync.Mutex
	state State
	creds *credentials.Credentials

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a manager and loads stored credentials. A load failure is
// logged and treated as "no credentials".
func New(config Config) (*Manager, error) {
	if err := config.Link.Validate(); err != nil {
		return nil, err
	}
	if config.Store == nil {
		return nil, fmt.Errorf("manager requires a credential store")
	}
	if config.NewPortal == nil {
		return nil, fmt.Errorf("manager requires a portal factory")
	}
	config.applyDefaults()

	m := &Manager{
		config: config,
		state:  StateDisconnected,
		sleep:  sleepContext,
	}

	creds, err := credentials.LoadOrNil(config.Store)
	if err != nil {
		logging.Warn("Could not load stored credentials, continuing without",
			zap.String("location", config.Store.Location()),
			zap.Error(err),
		)
	}
	if creds != nil {
		logging.Info("Loaded stored credentials",
			zap.String("ssid", creds.SSID),
			zap.String("origin", creds.Origin),
		)
	}
	m.creds = creds

	return m, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// State returns the current connection state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether the station is connected
func (m *Manager) Connected() bool {
	return m.State() == StateConnected
}

// Credentials returns the credentials the manager will connect with, or nil
func (m *Manager) Credentials() *credentials.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

func (m *Manager) setState(to State, reason string) {
	m.mu.Lock()
	from := m.state
	m.state = to
	m.mu.Unlock()

	if from == to {
		return
	}

	logging.LogStateTransition(from.String(), to.String(), reason)
	if m.config.OnStateChange != nil {
		m.config.OnStateChange(from, to)
	}
}

// ClearCredentials forgets the stored credentials.
func (m *Manager) ClearCredentials() error {
	if err := m.config.Store.Clear(); err != nil {
		return &ConnectionError{Kind: KindStorageFailure, Err: err}
	}

	m.mu.Lock()
	m.creds = nil
	m.mu.Unlock()

	logging.Info("Cleared stored credentials", zap.String("location", m.config.Store.Location()))
	return nil
}

// Connect attempts a station connection with the current credentials.
//
// The access point persona is disabled and the station enabled, any stale
// association is dropped, and the driver status is polled once per
// PollInterval for ConnectionTimeout. A wrong-password status ends the
// attempt immediately since drivers only report it transiently.
func (m *Manager) Connect(ctx context.Context) error {
	creds := m.Credentials()
	if creds == nil {
		return &ConnectionError{Kind: KindNoCredentials}
	}

	m.driverMu.Lock()
	defer m.driverMu.Unlock()

	m.setState(StateConnecting, fmt.Sprintf("connecting to %q", creds.SSID))

	err := m.connect(ctx, creds)
	if err != nil {
		m.setState(StateDisconnected, err.Error())
		return err
	}

	m.setState(StateConnected, fmt.Sprintf("joined %q", creds.SSID))
	return nil
}

func (m *Manager) connect(ctx context.Context, creds *credentials.Credentials) error {
	station := m.config.Link.Station
	ap := m.config.Link.AccessPoint

	driverFailure := func(err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ConnectionError{
			Kind: KindUnknownConnectionFailure,
			SSID: creds.SSID,
			Code: wireless.CodeConnectFail,
			Err:  err,
		}
	}

	if err := wireless.SetActive(ctx, ap, false, m.config.Activation); err != nil {
		return driverFailure(fmt.Errorf("failed to disable access point: %w", err))
	}
	if err := wireless.SetActive(ctx, station, true, m.config.Activation); err != nil {
		return driverFailure(fmt.Errorf("failed to enable station: %w", err))
	}
	if err := station.Disconnect(); err != nil {
		return driverFailure(fmt.Errorf("failed to drop stale association: %w", err))
	}
	if err := station.Connect(creds.SSID, creds.Password); err != nil {
		return driverFailure(fmt.Errorf("failed to start connection: %w", err))
	}

	iterations := int(m.config.ConnectionTimeout / m.config.PollInterval)
	if iterations < 1 {
		iterations = 1
	}

	for i := 0; i < iterations; i++ {
		status, err := station.Status()
		if err != nil {
			logging.Warn("Failed to read station status", zap.Error(err))
		} else {
			if status.Kind == wireless.StatusGotAddress {
				break
			}
			if status.Kind == wireless.StatusWrongPassword {
				return &ConnectionError{Kind: KindIncorrectPassword, SSID: creds.SSID, Code: status.Code}
			}
		}

		logging.Debug("Waiting for connection",
			zap.String("ssid", creds.SSID),
			zap.Int("attempt", i+1),
			zap.Int("of", iterations),
			zap.Stringer("status", status),
		)

		if err := m.sleep(ctx, m.config.PollInterval); err != nil {
			return err
		}
	}

	status, err := station.Status()
	if err != nil {
		return driverFailure(fmt.Errorf("failed to read final status: %w", err))
	}

	switch status.Kind {
	case wireless.StatusGotAddress:
		if info, err := station.AddressInfo(); err == nil {
			logging.Info("Station connected",
				zap.String("ssid", creds.SSID),
				zap.Stringer("address", info),
			)
		}
		return nil
	case wireless.StatusWrongPassword:
		return &ConnectionError{Kind: KindIncorrectPassword, SSID: creds.SSID, Code: status.Code}
	case wireless.StatusNoAccessPoint:
		return &ConnectionError{Kind: KindNoAccessPointFound, SSID: creds.SSID, Code: status.Code}
	default:
		return &ConnectionError{Kind: KindUnknownConnectionFailure, SSID: creds.SSID, Code: status.Code}
	}
}

// StartAccessPoint disables the station (disconnecting it first when
// associated) and brings up the access point with the configured network.
func (m *Manager) StartAccessPoint(ctx context.Context) error {
	m.driverMu.Lock()
	defer m.driverMu.Unlock()

	station := m.config.Link.Station
	ap := m.config.Link.AccessPoint

	associated, err := station.Associated()
	if err != nil {
		logging.Warn("Failed to read station association", zap.Error(err))
	}
	if associated {
		if err := station.Disconnect(); err != nil {
			return fmt.Errorf("failed to disconnect station: %w", err)
		}
	}

	if err := wireless.SetActive(ctx, station, false, m.config.Activation); err != nil {
		return fmt.Errorf("failed to disable station: %w", err)
	}
	if err := wireless.SetActive(ctx, ap, true, m.config.Activation); err != nil {
		return fmt.Errorf("failed to enable access point: %w", err)
	}
	if err := ap.ConfigureAccessPoint(m.config.AccessPointSSID, m.config.AccessPointPassword); err != nil {
		return fmt.Errorf("failed to configure access point: %w", err)
	}

	if info, err := ap.AddressInfo(); err == nil {
		logging.Info("Access point started",
			zap.String("ssid", m.config.AccessPointSSID),
			zap.Stringer("address", info),
		)
	}

	m.setState(StateAccessPoint, fmt.Sprintf("advertising %q", m.config.AccessPointSSID))
	return nil
}

// Provision clears stored credentials, runs one portal until it yields new
// credentials and persists them. A save failure is a KindStorageFailure
// error; the new credentials are not used in that case.
func (m *Manager) Provision(ctx context.Context) (*credentials.Credentials, error) {
	if err := m.ClearCredentials(); err != nil {
		logging.Warn("Failed to clear stored credentials", zap.Error(err))
	}

	if m.config.Announcer != nil {
		stop, err := m.config.Announcer.Announce(m.config.PortalPort)
		if err != nil {
			logging.Warn("Failed to announce portal", zap.Error(err))
		} else {
			defer stop()
		}
	}

	portal, err := m.config.NewPortal()
	if err != nil {
		return nil, fmt.Errorf("failed to create portal: %w", err)
	}

	creds, err := portal.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("portal failed: %w", err)
	}

	if err := m.config.Store.Save(creds); err != nil {
		return nil, &ConnectionError{Kind: KindStorageFailure, SSID: creds.SSID, Err: err}
	}

	saved := creds.WithOrigin(m.config.Store.Location())

	m.mu.Lock()
	m.creds = saved
	m.mu.Unlock()

	logging.Info("Saved new credentials",
		zap.String("ssid", saved.SSID),
		zap.String("location", saved.Origin),
	)

	return saved, nil
}

func (m *Manager) retryPolicy(ctx context.Context) backoff.BackOffContext {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.config.RetryInterval
	policy.MaxInterval = m.config.MaxRetryInterval
	policy.MaxElapsedTime = 0
	return backoff.WithContext(policy, ctx)
}

// Run connects with stored credentials and falls back to provisioning until
// the station is connected. It returns nil once connected, ctx.Err() on
// cancellation, or a KindStorageFailure error when new credentials could not
// be saved.
func (m *Manager) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if m.Credentials() != nil {
			err := m.Connect(ctx)
			if err == nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn("Connection failed, starting access point", zap.Error(err))
		} else {
			logging.Info("No credentials stored, starting access point")
		}

		err := backoff.RetryNotify(func() error {
			return m.StartAccessPoint(ctx)
		}, m.retryPolicy(ctx), func(err error, next time.Duration) {
			logging.Error("Failed to start access point, retrying",
				zap.Error(err),
				zap.Duration("retry_in", next),
			)
		})
		if err != nil {
			return err
		}

		err = backoff.RetryNotify(func() error {
			_, err := m.Provision(ctx)
			if err != nil && (IsStorageFailure(err) || ctx.Err() != nil) {
				return backoff.Permanent(err)
			}
			return err
		}, m.retryPolicy(ctx), func(err error, next time.Duration) {
			logging.Error("Provisioning failed, retrying",
				zap.Error(err),
				zap.Duration("retry_in", next),
			)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/muurk/wifiprov/internal/logging"
)

const (
	appName    = "wifiprov"
	configName = "wifiprov"
	envPrefix  = "WIFIPROV"

	// SystemDir is searched last for the config file
	SystemDir = "/etc/wifiprov"
)

// Credential store backends
const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

// Wireless drivers
const (
	DriverWPA = "wpa"
	DriverSim = "sim"
)

// minAccessPointPassword is the shortest WPA2 passphrase
const minAccessPointPassword = 8

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// Config holds the daemon configuration
type Config struct {
	// Credential storage
	CredentialsFile    string `mapstructure:"credentials-file" yaml:"credentials-file"`
	CredentialsBackend string `mapstructure:"credentials-backend" yaml:"credentials-backend"`

	// Wireless link
	Driver               string        `mapstructure:"driver" yaml:"driver"`
	StationInterface     string        `mapstructure:"station-interface" yaml:"station-interface"`
	AccessPointInterface string        `mapstructure:"ap-interface" yaml:"ap-interface"`
	AccessPointSSID      string        `mapstructure:"ap-ssid" yaml:"ap-ssid"`
	AccessPointPassword  string        `mapstructure:"ap-password" yaml:"ap-password"`
	ConnectionTimeout    time.Duration `mapstructure:"connection-timeout" yaml:"connection-timeout"`
	PollInterval         time.Duration `mapstructure:"poll-interval" yaml:"poll-interval"`
	ActivationTimeout    time.Duration `mapstructure:"activation-timeout" yaml:"activation-timeout"`

	// Provisioning portal
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout" yaml:"read-timeout"`
	PageFile        string        `mapstructure:"page-file" yaml:"page-file,omitempty"`
	ErrorPageFile   string        `mapstructure:"error-page-file" yaml:"error-page-file,omitempty"`
	SuccessPageFile string        `mapstructure:"success-page-file" yaml:"success-page-file,omitempty"`

	// mDNS announcement while provisioning
	MDNS         bool   `mapstructure:"mdns" yaml:"mdns"`
	MDNSInstance string `mapstructure:"mdns-instance" yaml:"mdns-instance,omitempty"`

	// Empty keeps logging silent
	LogLevel string `mapstructure:"log-level" yaml:"log-level,omitempty"`
}

// defaults maps every key to its built-in value. Keys without a default
// are invisible to environment lookups, so every field appears here.
var defaults = map[string]any{
	"credentials-file":    "wifi.json",
	"credentials-backend": BackendFile,
	"driver":              DriverWPA,
	"station-interface":   "wlan0",
	"ap-interface":        "uap0",
	"ap-ssid":             "PicoWifi Adhoc",
	"ap-password":         "1234567890",
	"connection-timeout":  30 * time.Second,
	"poll-interval":       1 * time.Second,
	"activation-timeout":  10 * time.Second,
	"port":                80,
	"read-timeout":        30 * time.Second,
	"page-file":           "",
	"error-page-file":     "",
	"success-page-file":   "",
	"mdns":                true,
	"mdns-instance":       "",
	"log-level":           "",
}

// Default returns the built-in configuration
func Default() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return &cfg
}

// ConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/wifiprov or $HOME/.config/wifiprov
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Environment variables (WIFIPROV_AP_SSID, etc.)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration from defaults, the config file, environment and
// flags. An explicit path must exist; without one a missing file is fine.
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	return load(newViper(), path, flags)
}

func load(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(SystemDir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.CredentialsFile == "" {
		return fmt.Errorf("credentials-file cannot be empty")
	}
	switch c.CredentialsBackend {
	case BackendFile, BackendBolt:
	default:
		return fmt.Errorf("credentials-backend must be %q or %q, got %q", BackendFile, BackendBolt, c.CredentialsBackend)
	}
	switch c.Driver {
	case DriverWPA, DriverSim:
	default:
		return fmt.Errorf("driver must be %q or %q, got %q", DriverWPA, DriverSim, c.Driver)
	}
	if c.Driver == DriverWPA {
		if c.StationInterface == "" || c.AccessPointInterface == "" {
			return fmt.Errorf("station-interface and ap-interface are required for the %s driver", DriverWPA)
		}
		if c.StationInterface == c.AccessPointInterface {
			return fmt.Errorf("station-interface and ap-interface must differ")
		}
	}
	if c.AccessPointSSID == "" {
		return fmt.Errorf("ap-ssid cannot be empty")
	}
	if len(c.AccessPointPassword) < minAccessPointPassword {
		return fmt.Errorf("ap-password must be at least %d characters", minAccessPointPassword)
	}
	if c.ConnectionTimeout <= 0 {
		return fmt.Errorf("connection-timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	if c.PollInterval > c.ConnectionTimeout {
		return fmt.Errorf("poll-interval (%v) cannot exceed connection-timeout (%v)", c.PollInterval, c.ConnectionTimeout)
	}
	if c.ActivationTimeout <= 0 {
		return fmt.Errorf("activation-timeout must be positive")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read-timeout must be positive")
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the configuration as YAML to path.
// Performs an atomic write to prevent corruption on crash.
func (c *Config) Save(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# wifiprov configuration
# Every key can be overridden with a WIFIPROV_* environment variable
# (ap-ssid -> WIFIPROV_AP_SSID) or the matching command-line flag.
#
# Wifi credentials are NOT stored here; see credentials-file.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// YAML renders the configuration the way Save writes it, without the header
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

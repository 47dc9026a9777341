package provisioning

import (
	"fmt"
	"time"
)

const (
	// DefaultPort is the port the portal listens on
	DefaultPort = 80

	// DefaultChunkSize is the size of each socket read
	DefaultChunkSize = 1024

	// DefaultMaxHeaderBytes bounds the request line plus headers
	DefaultMaxHeaderBytes = 8192

	// DefaultMaxBodyBytes bounds the declared Content-Length
	DefaultMaxBodyBytes = 64 * 1024

	// DefaultReadTimeout bounds how long one connection may take to deliver its request
	DefaultReadTimeout = 30 * time.Second
)

// Config holds the portal configuration
type Config struct {
	Host           string
	Port           int
	Page           string // served on GET
	ErrorPage      string // template with %CONTENT%
	SuccessPage    string // sent after an accepted submission
	ChunkSize      int
	MaxHeaderBytes int
	MaxBodyBytes   int
	ReadTimeout    time.Duration
}

// DefaultConfig returns the configuration of a stock portal
func DefaultConfig() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           DefaultPort,
		Page:           DefaultPage,
		ErrorPage:      DefaultErrorPage,
		SuccessPage:    DefaultSuccessPage,
		ChunkSize:      DefaultChunkSize,
		MaxHeaderBytes: DefaultMaxHeaderBytes,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		ReadTimeout:    DefaultReadTimeout,
	}
}

// Validate checks the configuration, filling zero values with defaults
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Page == "" {
		c.Page = DefaultPage
	}
	if c.ErrorPage == "" {
		c.ErrorPage = DefaultErrorPage
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

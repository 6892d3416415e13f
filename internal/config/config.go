package config

import (
	"errors"
	"fmt"
	"time"
)

// Defaults for webdemo serve
const (
	DefaultPort            = 3000
	DefaultShutdownTimeout = 5 * time.Second
)

var (
	ErrInvalidPort            = errors.New("port must be between 0 and 65535")
	ErrInvalidMetricsPort     = errors.New("metrics port must be between 0 and 65535")
	ErrMetricsPortConflict    = errors.New("metrics port must differ from the service port")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
)

// Config is the process-scoped server configuration, built once at startup
// and passed into the server constructor.
type Config struct {
	// Port is the TCP port the dispatcher listens on. Zero picks a free port.
	Port int `json:"port"`

	// MetricsPort exposes /metrics on a separate listener. Zero disables it.
	MetricsPort int `json:"metrics_port"`

	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// Default returns a Config populated with the default values
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Validate checks that the configuration can be used to start a server
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidMetricsPort, c.MetricsPort)
	}
	if c.MetricsPort != 0 && c.MetricsPort == c.Port {
		return ErrMetricsPortConflict
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidShutdownTimeout, c.ShutdownTimeout)
	}
	return nil
}

// Addr returns the listen address for the service port
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MetricsAddr returns the listen address for the metrics port
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf(":%d", c.MetricsPort)
}

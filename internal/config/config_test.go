package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plan for Config:
// 1. Default returns the documented defaults and validates
// 2. Validate rejects out-of-range ports and timeouts
// 3. Addr and MetricsAddr format listen addresses

func TestDefault(t *testing.T) {
	// Test: Default config uses port 3000 and no metrics listener
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 0, cfg.MetricsPort)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "port zero picks a free port",
			mutate: func(c *Config) { c.Port = 0 },
		},
		{
			name:   "metrics enabled",
			mutate: func(c *Config) { c.MetricsPort = 9100 },
		},
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Port = -1 },
			wantErr: ErrInvalidPort,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: ErrInvalidPort,
		},
		{
			name:    "metrics port too large",
			mutate:  func(c *Config) { c.MetricsPort = 65536 },
			wantErr: ErrInvalidMetricsPort,
		},
		{
			name:    "metrics port equals service port",
			mutate:  func(c *Config) { c.MetricsPort = c.Port },
			wantErr: ErrMetricsPortConflict,
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(c *Config) { c.ShutdownTimeout = 0 },
			wantErr: ErrInvalidShutdownTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	// Test: listen addresses bind all interfaces on the configured ports
	cfg := &Config{Port: 8080, MetricsPort: 9100}

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, ":9100", cfg.MetricsAddr())
}

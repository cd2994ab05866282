// Package config provides configuration management for the QuadCast server.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

// Config holds all configuration values for the server.
type Config struct {
	// Server configuration
	Port string `env:"PORT" envDefault:"4000"`
	Env  string `env:"ENV" envDefault:"development"`

	// Database configuration
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:./quadcast.db"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORS configuration
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`

	// LED control loop
	USBEnabled   bool          `env:"USB_ENABLED" envDefault:"true"`
	TickInterval time.Duration `env:"LED_TICK_INTERVAL" envDefault:"50ms"`
	FaultBackoff time.Duration `env:"LED_FAULT_BACKOFF" envDefault:"500ms"`
}

// Load reads configuration from environment variables, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

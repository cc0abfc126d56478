// Package config provides configuration for the gateway.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the gateway configuration.
type Config struct {
	// Server settings
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" default:"file:gateway.db?cache=shared&mode=rwc"`

	// Policy table; empty means built-in defaults
	PolicyFile string `envconfig:"POLICY_FILE" default:""`

	// Remote execution backend
	RemoteExecURL   string `envconfig:"REMOTE_EXEC_URL" default:"http://localhost:8090/execute"`
	RemoteTimeoutMs int    `envconfig:"REMOTE_TIMEOUT_MS" default:"30000"`

	// Sandbox queue
	SandboxQueueSize int `envconfig:"SANDBOX_QUEUE_SIZE" default:"64"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// RemoteTimeout returns the remote executor timeout as a duration.
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutMs) * time.Millisecond
}

// Load loads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("GATEWAY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, nil
}

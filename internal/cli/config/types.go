// Package config provides configuration management for the LakeGate CLI.
//
// Settings are resolved from, in increasing precedence: built-in
// defaults, the ~/.databrickscfg profile, a lakegate.yaml file,
// DATABRICKS_* environment variables, and command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	Host         string `koanf:"host"`
	Token        string `koanf:"token"`
	AuthType     string `koanf:"auth_type"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	WarehouseID  string `koanf:"warehouse_id"`
	Profile      string `koanf:"config_profile"`

	PollIntervalSeconds int     `koanf:"poll_interval_seconds"`
	MaxWaitSeconds      int     `koanf:"max_wait_seconds"`
	RateLimit           float64 `koanf:"rate_limit"`

	Output  string `koanf:"output"`
	Verbose bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultProfile             = "DEFAULT"
	DefaultAuthType            = "pat"
	DefaultPollIntervalSeconds = 10
	DefaultMaxWaitSeconds      = 600
	DefaultOutput              = "table"
)

// PollInterval returns the statement polling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// MaxWait returns the total statement polling budget.
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitSeconds) * time.Second
}

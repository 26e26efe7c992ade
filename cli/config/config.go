package config

import (
	"fmt"
	"time"
)

// Config represents a cosecha.yaml configuration file.
// All values are optional and act as defaults for CLI flags.
// CLI flags always override config values.
type Config struct {
	// DataDir is the local root under which per-job output directories
	// are created. Defaults to "./data".
	DataDir string `yaml:"data_dir"`

	Portal   PortalConfig   `yaml:"portal"`
	Download DownloadConfig `yaml:"download"`
	Storage  StorageConfig  `yaml:"storage"`
	Adapter  AdapterConfig  `yaml:"adapter"`
	Session  SessionConfig  `yaml:"session"`
}

// PortalConfig holds portal navigation defaults.
type PortalConfig struct {
	// LoginURL is the portal entry point.
	LoginURL string `yaml:"login_url"`
	// DashboardPattern is the URL pattern that signals an active session.
	DashboardPattern string `yaml:"dashboard_pattern"`
	// BrowserURL is the WebSocket URL of an externally managed browser.
	// Empty launches a local instance.
	BrowserURL string `yaml:"browser_url"`
	// LoginTimeout bounds session-ready detection (manual CAPTCHA login
	// can take minutes). Default 5m.
	LoginTimeout Duration `yaml:"login_timeout"`
	// PollInterval is the session-ready polling interval. Default 2s.
	PollInterval Duration `yaml:"poll_interval"`
}

// DownloadConfig holds download retry and integrity defaults.
type DownloadConfig struct {
	// MaxAttempts is the per-row attempt budget in the bulk pass. Default 3.
	MaxAttempts int `yaml:"max_attempts"`
	// ReconcileAttempts is the per-row budget in the reconciliation pass.
	// Default 2.
	ReconcileAttempts int `yaml:"reconcile_attempts"`
	// WaitTimeout bounds a single download completion wait. Default 30s.
	WaitTimeout Duration `yaml:"wait_timeout"`
}

// StorageConfig holds storage handoff defaults.
type StorageConfig struct {
	// Backend selects "fs" (default) or "s3".
	Backend string `yaml:"backend"`
	// Path is the fs root or "bucket/prefix" for s3.
	Path string `yaml:"path"`
	// Region is the AWS region for the s3 backend.
	Region string `yaml:"region"`
	// Endpoint is a custom S3 endpoint for compatible providers.
	Endpoint string `yaml:"endpoint"`
	// S3PathStyle forces path-style addressing.
	S3PathStyle bool `yaml:"s3_path_style"`
}

// AdapterConfig holds job-completion notification defaults.
type AdapterConfig struct {
	// Type selects the adapter: "redis" publishes to a channel,
	// "webhook" POSTs to URL. Empty disables notifications.
	Type    string   `yaml:"type"`
	URL     string   `yaml:"url"`
	Channel string   `yaml:"channel,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
	Retries *int     `yaml:"retries,omitempty"`
}

// SessionConfig holds session-store defaults.
type SessionConfig struct {
	// MaxAge is the sweep threshold for idle sessions. Default 30m.
	MaxAge Duration `yaml:"max_age"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// ApplyDefaults fills unset values with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Portal.LoginTimeout.Duration <= 0 {
		c.Portal.LoginTimeout.Duration = 5 * time.Minute
	}
	if c.Portal.PollInterval.Duration <= 0 {
		c.Portal.PollInterval.Duration = 2 * time.Second
	}
	if c.Download.MaxAttempts <= 0 {
		c.Download.MaxAttempts = 3
	}
	if c.Download.ReconcileAttempts <= 0 {
		c.Download.ReconcileAttempts = 2
	}
	if c.Download.WaitTimeout.Duration <= 0 {
		c.Download.WaitTimeout.Duration = 30 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "fs"
	}
	if c.Session.MaxAge.Duration <= 0 {
		c.Session.MaxAge.Duration = 30 * time.Minute
	}
}

// Package config loads catalog-server configuration from layered sources:
// compiled defaults, an optional YAML config file, then environment
// variables (the practical stand-in for "CLI defaults" here, since CLI flag
// parsing itself is an out-of-scope external collaborator).
package config

import (
	"fmt"
	"os"
	"time"
)

// Config is the fully resolved, validated server configuration.
type Config struct {
	DBDir              string `koanf:"db_dir"`
	MediaPath          string `koanf:"media_path"`
	Port               int    `koanf:"port"`
	MetricsPort        int    `koanf:"metrics_port"`
	ContentCacheAgeSec int    `koanf:"content_cache_age_sec"`
	FrontendDirPath    string `koanf:"frontend_dir_path"`

	DownloaderURL        string `koanf:"downloader_url"`
	DownloaderTimeoutSec int    `koanf:"downloader_timeout_sec"`

	EventRetentionDays int `koanf:"event_retention_days"`
	PruneIntervalHours int `koanf:"prune_interval_hours"`

	Search   SearchConfig   `koanf:"search"`
	SSL      SSLConfig      `koanf:"ssl"`
	Logging  LoggingConfig  `koanf:"logging"`
	Security SecurityConfig `koanf:"security"`
	Devices  DeviceConfig   `koanf:"devices"`
}

type SearchConfig struct {
	// Engine selects the search backend: pezzothash | fts5 | fts5-levenshtein | noop.
	Engine string `koanf:"engine"`
}

type SSLConfig struct {
	CertPath string `koanf:"cert_path"`
	KeyPath  string `koanf:"key_path"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`

	OIDCIssuer       string `koanf:"oidc_issuer"`
	OIDCClientID     string `koanf:"oidc_client_id"`
	OIDCClientSecret string `koanf:"oidc_client_secret"`
}

type DeviceConfig struct {
	MaxPerUser int `koanf:"max_per_user"`
}

// Validate checks invariants that can't be expressed as zero-value defaults.
func (c *Config) Validate() error {
	if c.DBDir == "" {
		return fmt.Errorf("db_dir must not be empty")
	}
	if c.MediaPath == "" {
		return fmt.Errorf("media_path must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Search.Engine {
	case "pezzothash", "fts5", "fts5-levenshtein", "noop":
	default:
		return fmt.Errorf("unknown search.engine %q", c.Search.Engine)
	}
	if c.Devices.MaxPerUser <= 0 {
		return fmt.Errorf("devices.max_per_user must be positive")
	}
	if (c.SSL.CertPath == "") != (c.SSL.KeyPath == "") {
		return fmt.Errorf("ssl.cert_path and ssl.key_path must be set together")
	}
	return nil
}

// CatalogDBPath, UserDBPath, ServerDBPath, SearchDBPath return the
// per-concern SQLite file paths under db_dir.
func (c *Config) CatalogDBPath() string { return c.DBDir + "/catalog.db" }
func (c *Config) UserDBPath() string    { return c.DBDir + "/user.db" }
func (c *Config) ServerDBPath() string  { return c.DBDir + "/server.db" }
func (c *Config) SearchDBPath() string  { return c.DBDir + "/search.db" }

func (c *Config) AudioMediaDir() string { return c.MediaPath + "/audio" }
func (c *Config) ImageMediaDir() string { return c.MediaPath + "/images" }

// EnsureDirectories creates db_dir and the media subdirectories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DBDir, c.AudioMediaDir(), c.ImageMediaDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

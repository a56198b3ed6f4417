package config

import "time"

func defaultConfig() *Config {
	return &Config{
		DBDir:              "./data/db",
		MediaPath:          "./data/media",
		Port:               8080,
		MetricsPort:        9090,
		ContentCacheAgeSec: 3600,
		FrontendDirPath:    "",

		DownloaderURL:        "",
		DownloaderTimeoutSec: 300,

		EventRetentionDays: 30,
		PruneIntervalHours: 24,

		Search: SearchConfig{
			Engine: "fts5-levenshtein",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			RateLimitReqs:     120,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
			TrustedProxies:    []string{},
		},
		Devices: DeviceConfig{
			MaxPerUser: 50,
		},
	}
}

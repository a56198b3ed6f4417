package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the default config-file search path.
const ConfigPathEnvVar = "CATALOG_CONFIG_PATH"

// DefaultConfigPaths are searched in order; the first one found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pezzottify/config.yaml",
}

var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// Load resolves configuration from compiled defaults, an optional YAML file,
// then environment variables (highest priority), and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("CATALOG_", ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	if err := expandSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform maps CATALOG_SEARCH_ENGINE -> search.engine, CATALOG_PORT -> port.
func envTransform(key string) string {
	key = strings.TrimPrefix(key, "CATALOG_")
	return strings.ToLower(strings.ReplaceAll(key, "_", "."))
}

func expandSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		v := k.String(path)
		if v == "" {
			continue
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := k.Set(path, parts); err != nil {
			return err
		}
	}
	return nil
}

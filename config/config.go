// Package config loads storefront configuration from an optional YAML file
// with environment variable overrides. Environment wins over file, file wins
// over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from yaml strings like "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds everything main needs to wire the storefront.
type Config struct {
	// APIURL is the base URL of the backend REST API.
	APIURL string `yaml:"api_url"`
	// ImageURL is the base URL prepended to relative image references.
	ImageURL string `yaml:"image_url"`
	// Addr is the listen address of the storefront HTTP surface.
	Addr string `yaml:"addr"`
	// RedisURL enables redis-backed session persistence when non-empty;
	// otherwise an in-memory store is used and sessions do not survive restarts.
	RedisURL string `yaml:"redis_url"`
	// SessionTTL bounds how long a restored session is trusted. Zero means
	// no expiry.
	SessionTTL Duration `yaml:"session_ttl"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		APIURL:   "http://localhost:5000/api",
		ImageURL: "http://localhost:5000",
		Addr:     ":8080",
	}
}

// Load reads path (when non-empty) and applies environment overrides.
// A missing file at an explicitly given path is an error; path=="" skips the
// file step entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("EVERBITE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("EVERBITE_IMAGE_URL"); v != "" {
		cfg.ImageURL = v
	}
	if v := os.Getenv("EVERBITE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("EVERBITE_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("EVERBITE_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parse EVERBITE_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = Duration(d)
	}

	if cfg.APIURL == "" {
		return cfg, fmt.Errorf("api_url must not be empty")
	}
	return cfg, nil
}

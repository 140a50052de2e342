// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/schoolbook/config.yaml",
	"/etc/schoolbook/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	st := DefaultStoreConfig()
	return &Config{
		Store: st,
		Sync: SyncConfig{
			EndpointURL:         "",
			Timeout:             60 * time.Second,
			BreakerMaxRequests:  1,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  5,
			BreakerFailureRatio: 0.6,
			FailureLogInterval:  time.Minute,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8686,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
			MaxUploadBytes:  10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// DefaultStoreConfig mirrors store.DefaultConfig with koanf tags.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Path:         "./data/store",
		SyncWrites:   true,
		MaxSlotBytes: 64 << 20,
		GCInterval:   30 * time.Minute,
		GCRatio:      0.5,
		CloseTimeout: 30 * time.Second,
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables, after merging an optional .env file
//
// Precedence is ENV > .env > File > Defaults. godotenv never overrides a
// variable that is already set in the process environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment, with .env merged in first
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv merges a .env file into the process environment when one exists.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names to koanf config paths.
var envMappings = map[string]string{
	// Store
	"store_path":           "store.path",
	"store_in_memory":      "store.in_memory",
	"store_sync_writes":    "store.sync_writes",
	"store_compression":    "store.compression",
	"store_max_slot_bytes": "store.max_slot_bytes",
	"store_gc_interval":    "store.gc_interval",
	"store_gc_ratio":       "store.gc_ratio",
	"store_close_timeout":  "store.close_timeout",

	// Sync
	"sync_endpoint_url":          "sync.endpoint_url",
	"apps_script_url":            "sync.endpoint_url",
	"sync_timeout":               "sync.timeout",
	"sync_breaker_max_requests":  "sync.breaker_max_requests",
	"sync_breaker_interval":      "sync.breaker_interval",
	"sync_breaker_timeout":       "sync.breaker_timeout",
	"sync_breaker_min_requests":  "sync.breaker_min_requests",
	"sync_breaker_failure_ratio": "sync.breaker_failure_ratio",
	"sync_failure_log_interval":  "sync.failure_log_interval",

	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"max_upload_bytes":    "server.max_upload_bytes",

	// Security
	"credential_secret": "security.credential_secret",

	// School bootstrap
	"school_name":            "school.name",
	"school_current_session": "school.current_session",
	"school_address":         "school.address",
	"school_phone":           "school.phone",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its config path.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - STORE_PATH -> store.path
//   - HTTP_PORT -> server.port
//   - APPS_SCRIPT_URL -> sync.endpoint_url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

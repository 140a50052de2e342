// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package config

import (
	"time"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Config holds the process configuration.
//
// Loading order (Koanf v2):
//  1. Defaults
//  2. Optional YAML file (config.yaml, or the path in CONFIG_PATH)
//  3. .env file, if present, merged into the process environment
//  4. Environment variables
//
// Config is immutable after Load and safe for concurrent reads.
//
// The remote endpoint and school identity that the application works with
// day to day live in the store's config slot, not here. Sync.EndpointURL and
// School only seed that slot on first start.
type Config struct {
	Store    StoreConfig    `koanf:"store"`
	Sync     SyncConfig     `koanf:"sync"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	School   SchoolConfig   `koanf:"school"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// StoreConfig configures the local store.
//
// Environment Variables:
//   - STORE_PATH: BadgerDB directory (default: ./data/store)
//   - STORE_IN_MEMORY: keep everything in memory (default: false)
//   - STORE_SYNC_WRITES: fsync every write (default: true)
//   - STORE_COMPRESSION: snappy-compress values (default: false)
//   - STORE_MAX_SLOT_BYTES: per-collection size cap (default: 64MiB)
//   - STORE_GC_INTERVAL: value log GC interval (default: 30m)
type StoreConfig struct {
	Path         string        `koanf:"path"`
	InMemory     bool          `koanf:"in_memory"`
	SyncWrites   bool          `koanf:"sync_writes"`
	Compression  bool          `koanf:"compression"`
	MaxSlotBytes int64         `koanf:"max_slot_bytes"`
	GCInterval   time.Duration `koanf:"gc_interval"`
	GCRatio      float64       `koanf:"gc_ratio"`
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// StoreSettings converts to the store package configuration.
func (s StoreConfig) StoreSettings() store.Config {
	return store.Config{
		Path:         s.Path,
		InMemory:     s.InMemory,
		SyncWrites:   s.SyncWrites,
		Compression:  s.Compression,
		MaxSlotBytes: s.MaxSlotBytes,
		GCInterval:   s.GCInterval,
		GCRatio:      s.GCRatio,
		CloseTimeout: s.CloseTimeout,
	}
}

// SyncConfig configures the remote sync client.
//
// Environment Variables:
//   - SYNC_ENDPOINT_URL: Apps Script endpoint seeded into an empty config slot
//   - SYNC_TIMEOUT: HTTP timeout for push and pull (default: 60s)
//   - SYNC_BREAKER_MAX_REQUESTS: requests allowed while half-open (default: 1)
//   - SYNC_BREAKER_INTERVAL: closed-state count reset window (default: 1m)
//   - SYNC_BREAKER_TIMEOUT: open-state wait before half-open (default: 30s)
//   - SYNC_BREAKER_MIN_REQUESTS: requests before the breaker may trip (default: 5)
//   - SYNC_BREAKER_FAILURE_RATIO: failure ratio that trips the breaker (default: 0.6)
//   - SYNC_FAILURE_LOG_INTERVAL: minimum gap between push failure logs (default: 1m)
type SyncConfig struct {
	EndpointURL         string        `koanf:"endpoint_url"`
	Timeout             time.Duration `koanf:"timeout"`
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	FailureLogInterval  time.Duration `koanf:"failure_log_interval"`
}

// ServerConfig configures the local HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes"`
}

// SecurityConfig holds secrets.
type SecurityConfig struct {
	// CredentialSecret derives the key that encrypts remote database
	// credentials at rest. Empty stores them as given.
	CredentialSecret string `koanf:"credential_secret"`
}

// SchoolConfig seeds the stored SystemConfig on first start.
type SchoolConfig struct {
	Name           string `koanf:"name"`
	CurrentSession string `koanf:"current_session"`
	Address        string `koanf:"address"`
	Phone          string `koanf:"phone"`
}

// InitialSystemConfig is written to the store's config slot when it is
// empty. Once the slot exists the stored value wins and this is ignored.
func (c *Config) InitialSystemConfig() models.SystemConfig {
	return models.SystemConfig{
		SchoolName:     c.School.Name,
		AppsScriptURL:  c.Sync.EndpointURL,
		CurrentSession: c.School.CurrentSession,
		Address:        c.School.Address,
		Phone:          c.School.Phone,
	}
}

// LoggingConfig configures the zerolog global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// LoggerSettings converts to the logging package configuration.
func (l LoggingConfig) LoggerSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

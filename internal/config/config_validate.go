// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateStore() error {
	settings := c.Store.StoreSettings()
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// validateSync validates the remote endpoint (optional) and breaker tuning.
func (c *Config) validateSync() error {
	if c.Sync.EndpointURL != "" {
		if err := validateEndpointURL(c.Sync.EndpointURL, "SYNC_ENDPOINT_URL"); err != nil {
			return err
		}
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("SYNC_TIMEOUT must be positive, got %s", c.Sync.Timeout)
	}
	if c.Sync.BreakerFailureRatio <= 0 || c.Sync.BreakerFailureRatio > 1 {
		return fmt.Errorf("SYNC_BREAKER_FAILURE_RATIO must be in (0, 1], got %g", c.Sync.BreakerFailureRatio)
	}
	if c.Sync.BreakerMaxRequests == 0 {
		return fmt.Errorf("SYNC_BREAKER_MAX_REQUESTS must be at least 1")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative")
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, disabled; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package store

import (
	"errors"
	"fmt"
	"time"
)

// Config selects and tunes the store backend.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory runs BadgerDB without touching disk. Data is lost on exit.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Compression enables Snappy compression of stored values.
	Compression bool

	// MaxSlotBytes caps the encoded size of a single slot. 0 disables the cap.
	MaxSlotBytes int64

	// GCInterval is the time between value log GC passes. 0 disables GC.
	GCInterval time.Duration

	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64

	// CloseTimeout bounds how long Close waits for BadgerDB.
	CloseTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:         "./data/store",
		SyncWrites:   true,
		MaxSlotBytes: 64 << 20,
		GCInterval:   30 * time.Minute,
		GCRatio:      0.5,
		CloseTimeout: 30 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return errors.New("store path is required unless in_memory is set")
	}
	if c.MaxSlotBytes < 0 {
		return fmt.Errorf("max slot bytes must not be negative, got %d", c.MaxSlotBytes)
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("gc interval must not be negative, got %s", c.GCInterval)
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return fmt.Errorf("gc ratio must be between 0 and 1 exclusive, got %v", c.GCRatio)
	}
	return nil
}

// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

// Package store is the durable local record store.
//
// Each collection lives in one named slot holding a whole JSON document:
// an array for collections and an object for the config and session
// singletons. A write always replaces the entire slot, so a failed write
// leaves the previous value intact.
//
// Two backends implement Store:
//   - BadgerStore persists slots in BadgerDB (ACID, optional fsync)
//   - MemoryStore keeps slots in a map, for tests and ephemeral runs
//
// The typed helpers ReadCollection and WriteCollection never expose the raw
// bytes to callers. Reads never fail: a missing or undecodable slot reads as
// an empty collection.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/metrics"
)

// Slot names. These are the persisted keys and must stay stable.
const (
	SlotStudents      = "students"
	SlotStaff         = "staff"
	SlotFees          = "fees"
	SlotAttendance    = "attendance"
	SlotConfig        = "config"
	SlotSession       = "current-session"
	SlotSchedule      = "schedule"
	SlotMarks         = "marks"
	SlotNotifications = "notifications"
)

// Slots lists every slot name.
var Slots = []string{
	SlotStudents, SlotStaff, SlotFees, SlotAttendance, SlotConfig,
	SlotSession, SlotSchedule, SlotMarks, SlotNotifications,
}

// Store is a slot-oriented key-value store.
type Store interface {
	// Read returns the raw value of a slot, or nil if the slot is absent.
	Read(name string) []byte

	// Write replaces a slot. Failures are *PersistenceError.
	Write(name string, raw []byte) error

	// WriteMany replaces several slots in one transaction. Either every
	// slot is written or none is.
	WriteMany(slots map[string][]byte) error

	// Delete removes a slot. Deleting an absent slot is not an error.
	Delete(name string) error

	// Snapshot copies every present slot.
	Snapshot() map[string][]byte

	// Close releases the backend.
	Close() error
}

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	Ping() error
}

var (
	// ErrQuotaExceeded is returned when a value exceeds the configured slot
	// size limit or the backend's transaction limit.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrClosed is returned when writing to a closed store.
	ErrClosed = errors.New("store is closed")
)

// PersistenceError reports a failed local write. The previous slot value is
// unchanged when it is returned.
type PersistenceError struct {
	Slot string
	Op   string // "encode", "write", "delete"
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %s: %v", e.Slot, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// reason maps a persistence failure to a metrics label.
func reason(err error) string {
	var pe *PersistenceError
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	case errors.As(err, &pe) && pe.Op == "encode":
		return "encode"
	default:
		return "storage"
	}
}

// EncodeCollection serializes records for a slot. A nil slice encodes as [].
func EncodeCollection[T any](name string, records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, &PersistenceError{Slot: name, Op: "encode", Err: err}
	}
	return raw, nil
}

// ReadCollection decodes a collection slot. Missing, null or undecodable
// values read as an empty, non-nil slice.
func ReadCollection[T any](s Store, name string) []T {
	raw := s.Read(name)
	if len(raw) == 0 {
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		logging.Warn().Err(err).Str("slot", name).Int("bytes", len(raw)).
			Msg("Slot is not a readable collection, treating as empty")
		metrics.RecordCorruptRead(name)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

// WriteCollection replaces a collection slot with records.
func WriteCollection[T any](s Store, name string, records []T) error {
	start := time.Now()
	raw, err := EncodeCollection(name, records)
	if err == nil {
		err = s.Write(name, raw)
	}
	metrics.RecordStoreWrite(name, len(raw), time.Since(start), reason(err), err)
	return err
}

// ReadObject decodes a singleton slot. ok is false when the slot is absent
// or cannot be decoded.
func ReadObject[T any](s Store, name string) (v T, ok bool) {
	raw := s.Read(name)
	if len(raw) == 0 || string(raw) == "null" {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		logging.Warn().Err(err).Str("slot", name).Msg("Slot is not a readable object, ignoring")
		metrics.RecordCorruptRead(name)
		var zero T
		return zero, false
	}
	return v, true
}

// WriteObject replaces a singleton slot with v.
func WriteObject[T any](s Store, name string, v T) error {
	start := time.Now()
	raw, err := json.Marshal(v)
	if err != nil {
		err = &PersistenceError{Slot: name, Op: "encode", Err: err}
	} else {
		err = s.Write(name, raw)
	}
	metrics.RecordStoreWrite(name, len(raw), time.Since(start), reason(err), err)
	return err
}

// checkSize enforces the per-slot limit. limit <= 0 disables the check.
func checkSize(name string, raw []byte, limit int64) error {
	if limit > 0 && int64(len(raw)) > limit {
		return &PersistenceError{
			Slot: name,
			Op:   "write",
			Err:  fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrQuotaExceeded, len(raw), limit),
		}
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

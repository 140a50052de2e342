// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package store

import (
	"strings"
	"sync"
)

// MemoryStore implements Store with a map. Values are copied on the way in
// and out so callers cannot alias stored bytes.
type MemoryStore struct {
	mu           sync.RWMutex
	slots        map[string][]byte
	maxSlotBytes int64
	failWith     error
	closed       bool
}

// NewMemoryStore returns an empty store. maxSlotBytes <= 0 disables the
// size limit.
func NewMemoryStore(maxSlotBytes int64) *MemoryStore {
	return &MemoryStore{
		slots:        make(map[string][]byte),
		maxSlotBytes: maxSlotBytes,
	}
}

// FailWrites makes every subsequent write fail with err wrapped in a
// PersistenceError. Pass nil to restore normal behavior.
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	m.failWith = err
	m.mu.Unlock()
}

// Read implements Store.
func (m *MemoryStore) Read(name string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneBytes(m.slots[name])
}

// Write implements Store.
func (m *MemoryStore) Write(name string, raw []byte) error {
	return m.WriteMany(map[string][]byte{name: raw})
}

// WriteMany implements Store.
func (m *MemoryStore) WriteMany(slots map[string][]byte) error {
	names := sortedNames(slots)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &PersistenceError{Slot: strings.Join(names, ","), Op: "write", Err: ErrClosed}
	}
	if m.failWith != nil {
		return &PersistenceError{Slot: strings.Join(names, ","), Op: "write", Err: m.failWith}
	}
	for _, name := range names {
		if err := checkSize(name, slots[name], m.maxSlotBytes); err != nil {
			return err
		}
	}
	for _, name := range names {
		m.slots[name] = cloneBytes(slots[name])
	}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &PersistenceError{Slot: name, Op: "delete", Err: ErrClosed}
	}
	if m.failWith != nil {
		return &PersistenceError{Slot: name, Op: "delete", Err: m.failWith}
	}
	delete(m.slots, name)
	return nil
}

// Snapshot implements Store.
func (m *MemoryStore) Snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.slots))
	for name, raw := range m.slots {
		out[name] = cloneBytes(raw)
	}
	return out
}

// Ping reports whether the store accepts writes.
func (m *MemoryStore) Ping() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/metrics"
)

const prefixSlot = "slot:"

// BadgerStore implements Store on BadgerDB. Every slot is one key under the
// "slot:" prefix.
type BadgerStore struct {
	db     *badger.DB
	config Config

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) the store described by cfg.
func OpenBadger(cfg Config) (*BadgerStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Bool("compression", cfg.Compression).
		Msg("Record store opened")

	return &BadgerStore{db: db, config: cfg}, nil
}

func slotKey(name string) []byte {
	return []byte(prefixSlot + name)
}

func (s *BadgerStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Ping reports whether the store accepts writes.
func (s *BadgerStore) Ping() error {
	if s.isClosed() {
		return ErrClosed
	}
	return nil
}

// Read implements Store.
func (s *BadgerStore) Read(name string) []byte {
	if s.isClosed() {
		return nil
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slotKey(name))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logging.Warn().Err(err).Str("slot", name).Msg("Slot read failed, treating as absent")
		}
		return nil
	}
	return raw
}

// Write implements Store.
func (s *BadgerStore) Write(name string, raw []byte) error {
	return s.WriteMany(map[string][]byte{name: raw})
}

// WriteMany implements Store. All slots are set in a single transaction.
func (s *BadgerStore) WriteMany(slots map[string][]byte) error {
	names := sortedNames(slots)
	first := ""
	if len(names) > 0 {
		first = names[0]
	}
	if s.isClosed() {
		return &PersistenceError{Slot: first, Op: "write", Err: ErrClosed}
	}
	for _, name := range names {
		if err := checkSize(name, slots[name], s.config.MaxSlotBytes); err != nil {
			return err
		}
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, name := range names {
			if err := txn.Set(slotKey(name), slots[name]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrTxnTooBig) {
			err = fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return &PersistenceError{Slot: strings.Join(names, ","), Op: "write", Err: err}
	}
	return nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(name string) error {
	if s.isClosed() {
		return &PersistenceError{Slot: name, Op: "delete", Err: ErrClosed}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(slotKey(name))
	})
	if err != nil {
		return &PersistenceError{Slot: name, Op: "delete", Err: err}
	}
	return nil
}

// Snapshot implements Store.
func (s *BadgerStore) Snapshot() map[string][]byte {
	out := make(map[string][]byte)
	if s.isClosed() {
		return out
	}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixSlot)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[strings.TrimPrefix(string(item.Key()), prefixSlot)] = val
		}
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("Store snapshot incomplete")
	}
	return out
}

// RunGC reclaims value log space until BadgerDB reports nothing to rewrite.
func (s *BadgerStore) RunGC() error {
	if s.isClosed() {
		return ErrClosed
	}
	if s.config.InMemory {
		return nil
	}

	metrics.StoreGCRuns.Inc()
	for {
		err := s.db.RunValueLogGC(s.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close flushes and closes BadgerDB, giving up after CloseTimeout.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	timeout := s.config.CloseTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("Record store closed")
		return nil
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}

func sortedNames(slots map[string][]byte) []string {
	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

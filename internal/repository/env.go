// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"sync"

	"github.com/tomtom215/schoolbook/internal/events"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Scheduler requests a background push of the full dataset. SchedulePush
// must not block.
type Scheduler interface {
	SchedulePush()
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func()

// SchedulePush implements Scheduler.
func (f SchedulerFunc) SchedulePush() { f() }

// Env is the state shared by every repository on one store: the store
// itself, the change bus, the push scheduler and the mutation lock that
// serializes read-modify-write cycles across all collections.
type Env struct {
	store store.Store
	bus   *events.Bus

	mu sync.Mutex // held across every read-modify-write

	schedMu   sync.RWMutex
	scheduler Scheduler
}

// NewEnv builds the shared repository environment. scheduler may be nil and
// set later with SetScheduler.
func NewEnv(s store.Store, bus *events.Bus, scheduler Scheduler) *Env {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Env{store: s, bus: bus, scheduler: scheduler}
}

// Store returns the underlying store.
func (e *Env) Store() store.Store { return e.store }

// Bus returns the change bus.
func (e *Env) Bus() *events.Bus { return e.bus }

// SetScheduler installs the push scheduler.
func (e *Env) SetScheduler(s Scheduler) {
	e.schedMu.Lock()
	e.scheduler = s
	e.schedMu.Unlock()
}

// ApplySnapshot replaces several slots in one store transaction under the
// mutation lock, then publishes a single change notification. No push is
// scheduled. This is the write path for pulls.
func (e *Env) ApplySnapshot(slots map[string][]byte) error {
	if len(slots) == 0 {
		return nil
	}

	e.mu.Lock()
	err := e.store.WriteMany(slots)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.bus.Publish()
	return nil
}

// changed runs the post-write side effects: notify listeners, then request
// a push unless the slot is local-only.
func (e *Env) changed(push bool) {
	e.bus.Publish()
	if !push {
		return
	}

	e.schedMu.RLock()
	s := e.scheduler
	e.schedMu.RUnlock()
	if s != nil {
		s.SchedulePush()
	}
}

// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

// Package events carries "something changed" signals from the repositories
// to whatever is watching them.
//
// Bus is the synchronous core: Publish calls every listener in subscription
// order before returning and carries no payload, so listeners re-read the
// store. ChangeFeed hangs off the bus and re-publishes each signal on an
// in-process Watermill topic, letting slow consumers (the WebSocket hub)
// run on their own goroutine.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/metrics"
)

// Listener is notified after every successful mutation or pull.
type Listener func()

type subscription struct {
	id     uint64
	fn     Listener
	active atomic.Bool
}

// Bus is a synchronous, ordered publish/subscribe hub. The zero value is not
// usable; call NewBus.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []*subscription
}

// NewBus returns a bus with no listeners.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is idempotent.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	sub := &subscription{id: b.nextID, fn: fn}
	sub.active.Store(true)
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return func() {
		if !sub.active.Swap(false) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == sub.id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every listener once, in subscription order. Listeners
// removed during delivery are skipped; listeners added during delivery are
// first called on the next Publish. A panicking listener is logged and the
// remaining listeners still run.
func (b *Bus) Publish() {
	b.mu.Lock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	metrics.BusPublishes.Inc()
	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		deliver(sub)
	}
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func deliver(sub *subscription) {
	defer func() {
		if r := recover(); r != nil {
			metrics.BusListenerPanics.Inc()
			logging.Error().
				Uint64("listener", sub.id).
				Interface("panic", r).
				Msg("Change listener panicked")
		}
	}()
	sub.fn()
}

// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package store

import (
	"context"
	"time"

	"github.com/tomtom215/schoolbook/internal/logging"
)

// GCService runs value log garbage collection on an interval. Every slot
// write rewrites a whole collection, so stale values pile up quickly.
type GCService struct {
	store    *BadgerStore
	interval time.Duration
}

// NewGCService returns a supervisor-compatible GC loop.
func NewGCService(s *BadgerStore, interval time.Duration) *GCService {
	return &GCService{store: s, interval: interval}
}

// Serve implements suture.Service.
func (g *GCService) Serve(ctx context.Context) error {
	if g.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.store.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Store GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (g *GCService) String() string {
	return "store-gc"
}

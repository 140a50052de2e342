// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/schoolbook/internal/logging"
)

// SyncResult is returned by the explicit sync endpoints.
type SyncResult struct {
	Direction   string    `json:"direction"`
	Offline     bool      `json:"offline"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// syncTimeout bounds an explicit push or pull. The HTTP client timeout of
// the sync transport usually fires first.
func (h *Handler) syncTimeout() time.Duration {
	if h.config != nil && h.config.Sync.Timeout > 0 {
		return h.config.Sync.Timeout + 5*time.Second
	}
	return 2 * time.Minute
}

// SyncPull replaces local collections with the remote snapshot.
//
// The pull runs detached from the request context so a client disconnect
// cannot leave a half-fetched snapshot; failure leaves local data as it was.
func (h *Handler) SyncPull(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, "pull", func(ctx context.Context) error { return h.syncer.PullAll(ctx) })
}

// SyncPush sends the full local dataset to the remote now. Offline mode
// succeeds without contacting anything.
func (h *Handler) SyncPush(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, "push", func(ctx context.Context) error { return h.syncer.PushAll(ctx) })
}

func (h *Handler) runSync(w http.ResponseWriter, r *http.Request, direction string, fn func(context.Context) error) {
	if h.syncer == nil {
		respondError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Sync engine unavailable", nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.syncTimeout())
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("direction", direction).
		Dur("duration", time.Since(start)).
		Msg("Manual sync completed")

	respondData(w, r, http.StatusOK, SyncResult{
		Direction:   direction,
		Offline:     h.repos.Config.Endpoint() == "",
		CompletedAt: time.Now(),
		DurationMS:  time.Since(start).Milliseconds(),
	}, -1)
}

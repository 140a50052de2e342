// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/schoolbook/internal/config"
	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/middleware"
	"github.com/tomtom215/schoolbook/internal/repository"
	ws "github.com/tomtom215/schoolbook/internal/websocket"
)

// Syncer runs explicit pushes and pulls. *sync.Engine implements it.
type Syncer interface {
	PushAll(ctx context.Context) error
	PullAll(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, websocket upgrade
//   - handlers_helpers.go: response envelope and error mapping
//   - handlers_records.go: collection endpoints
//   - handlers_config.go: school config and session singletons
//   - handlers_sync.go: explicit push and pull
//   - handlers_roster.go: xlsx import and export
//   - handlers_health.go: health and latency endpoints
type Handler struct {
	repos     *repository.Repositories
	syncer    Syncer
	wsHub     *ws.Hub
	config    *config.Config
	latency   *middleware.LatencyMonitor
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// syncer may be nil, in which case the sync endpoints answer 503. wsHub may
// be nil, in which case /ws answers 503.
//
// Example:
//
//	handler := api.NewHandler(repos, engine, hub, cfg)
//	router := api.NewRouter(handler, cfg)
//	http.ListenAndServe(":8080", router.SetupChi())
func NewHandler(repos *repository.Repositories, syncer Syncer, wsHub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		repos:     repos,
		syncer:    syncer,
		wsHub:     wsHub,
		config:    cfg,
		latency:   middleware.NewLatencyMonitor(1000, time.Second),
		startTime: time.Now(),
	}
}

// Latency returns the monitor fed by the router's latency middleware.
func (h *Handler) Latency() *middleware.LatencyMonitor {
	return h.latency
}

// WebSocket upgrades the connection and streams change notifications to it.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
//
// Requests without an Origin header come from non-browser clients on the
// same machine (the desktop shell, curl) and are allowed; browsers always
// send one and must match the CORS allow list.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

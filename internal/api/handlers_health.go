// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Version is reported by the health endpoint. Set at build time with
// -ldflags "-X github.com/tomtom215/schoolbook/internal/api.Version=...".
var Version = "dev"

func (h *Handler) storeAvailable() bool {
	if h.repos == nil {
		return false
	}
	p, ok := h.repos.Env().Store().(store.Pinger)
	if !ok {
		return true
	}
	return p.Ping() == nil
}

// Health handles health check requests
//
// Status is "healthy" when the store accepts writes and "degraded"
// otherwise. Offline mode is not a degradation.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	storeOK := h.storeAvailable()

	status := "healthy"
	if !storeOK {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:         status,
		Version:        Version,
		StoreAvailable: storeOK,
		Uptime:         time.Since(h.startTime).Seconds(),
	}
	if h.repos != nil {
		health.Online = h.repos.Config.Endpoint() != ""
		health.ConfigSaved = h.repos.Config.Exists()
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.ClientCount()
	}

	respondData(w, r, http.StatusOK, health, -1)
}

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, -1)
}

// HealthReady handles readiness probe requests.
// Returns 200 OK only if the store accepts writes.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.storeAvailable()

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"store_available": ready,
			"ready_to_serve":  ready,
			"uptime":          time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLatency reports per-route latency over the recent request window.
// ?recent=N additionally returns the newest N samples.
func (h *Handler) HealthLatency(w http.ResponseWriter, r *http.Request) {
	stats := h.latency.Stats()
	data := map[string]interface{}{"routes": stats}
	if n, err := strconv.Atoi(r.URL.Query().Get("recent")); err == nil && n > 0 {
		data["recent"] = h.latency.Recent(n)
	}
	respondData(w, r, http.StatusOK, data, len(stats))
}

// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"net/http"

	"github.com/tomtom215/schoolbook/internal/config"
	"github.com/tomtom215/schoolbook/internal/models"
)

// configView is SystemConfig as returned to clients: credentials masked and
// the offline flag spelled out.
type configView struct {
	models.SystemConfig
	Offline bool `json:"offline"`
}

func maskedConfig(cfg models.SystemConfig) configView {
	cfg.DBUser = config.MaskCredential(cfg.DBUser)
	cfg.DBPassword = config.MaskCredential(cfg.DBPassword)
	return configView{SystemConfig: cfg, Offline: cfg.Offline()}
}

// GetConfig returns the stored school configuration. An unsaved
// configuration reads as the zero value, which is offline.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, maskedConfig(h.repos.Config.Get()), -1)
}

// PutConfig replaces the school configuration and schedules a push.
//
// A credential sent back exactly as GetConfig masked it keeps the stored
// value, so clients can round-trip the document without knowing secrets.
func (h *Handler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.SystemConfig
	if !decodeJSON(w, r, &cfg) {
		return
	}

	current := h.repos.Config.Get()
	if current.DBUser != "" && cfg.DBUser == config.MaskCredential(current.DBUser) {
		cfg.DBUser = current.DBUser
	}
	if current.DBPassword != "" && cfg.DBPassword == config.MaskCredential(current.DBPassword) {
		cfg.DBPassword = current.DBPassword
	}

	if err := h.repos.Config.Put(cfg); err != nil {
		writeError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, maskedConfig(h.repos.Config.Get()), -1)
}

// GetSession returns the signed-in user.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.repos.Session.Current()
	if !ok {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "No active session", nil)
		return
	}
	respondData(w, r, http.StatusOK, s, -1)
}

// PutSession signs a user in. The session is local only and never pushed.
func (h *Handler) PutSession(w http.ResponseWriter, r *http.Request) {
	var s models.Session
	if !decodeJSON(w, r, &s) {
		return
	}
	if err := h.repos.Session.Set(s); err != nil {
		writeError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, s, -1)
}

// DeleteSession signs the current user out.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.Session.Clear(); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

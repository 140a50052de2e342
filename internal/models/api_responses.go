// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

import (
	"time"
)

// APIResponse is the envelope returned by every local HTTP endpoint.
//
// Status is "success" or "error". On error the Error field is populated and
// Data is null.
//
//	{
//	  "status": "success",
//	  "data": [{"id": "S1", "admissionNo": "A100", ...}],
//	  "metadata": {"timestamp": "2026-01-10T08:00:00Z", "count": 1}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is the machine-readable error body.
//
// Codes in use: VALIDATION_FAILED, BAD_REQUEST, NOT_FOUND, CONFLICT,
// DATABASE_ERROR, EXTERNAL_SERVICE_FAILED, SERVICE_UNAVAILABLE, RATE_LIMITED,
// INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by GET /api/v1/health.
type HealthStatus struct {
	Status           string  `json:"status"`
	Version          string  `json:"version"`
	StoreAvailable   bool    `json:"store_available"`
	Online           bool    `json:"online"`
	ConfigSaved      bool    `json:"config_saved"`
	WebSocketClients int     `json:"websocket_clients"`
	Uptime           float64 `json:"uptime"`
}

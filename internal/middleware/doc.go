// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Package middleware provides the chi middleware used by the local API.

  - RequestID: reuses or generates X-Request-ID and stores it for logging.Ctx
  - PrometheusMetrics: api_requests_total and api_request_duration_seconds
    labelled by chi route pattern
  - LatencyMonitor: a sliding window of recent request latencies reported by
    the health endpoint, with a slow-request warning

All three are func(http.Handler) http.Handler and go straight into r.Use:

	lat := middleware.NewLatencyMonitor(1000, time.Second)
	r.Use(middleware.RequestID)
	r.Group(func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics, lat.Middleware)
	    r.Get("/api/v1/students", h.ListStudents)
	})

The status recorder shared by the metrics middlewares passes Hijack through
so websocket upgrades work behind them.
*/
package middleware

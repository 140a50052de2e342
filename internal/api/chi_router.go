// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/schoolbook/internal/config"
	"github.com/tomtom215/schoolbook/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler using the server section of cfg
// for CORS and rate limits.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(cfg)),
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
		r.Get("/latency", h.HealthLatency)
	})

	// ========================
	// Records API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(h.latency.Middleware)

		// the websocket stream must not sit behind the compressor
		r.Get("/ws", h.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Compress(5))

			r.Route("/students", func(r chi.Router) {
				r.Get("/", h.ListStudents)
				r.Post("/", h.UpsertStudent)
				r.Get("/{id}", h.GetStudent)
				r.Delete("/{id}", h.DeleteStudent)
			})

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", h.ListStaff)
				r.Post("/", h.UpsertStaff)
				r.Delete("/{id}", h.DeleteStaff)
			})

			r.Route("/fees", func(r chi.Router) {
				r.Get("/", h.ListFees)
				r.Post("/", h.RecordFee)
				r.Get("/collected", h.FeeSummary)
				r.Patch("/{id}/status", h.SetFeeStatus)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.ListAttendance)
				r.Post("/", h.SubmitAttendance)
				r.Get("/submitted", h.AttendanceSubmitted)
			})

			r.Route("/marks", func(r chi.Router) {
				r.Get("/", h.ListMarks)
				r.Post("/", h.EnterMarks)
				r.Delete("/{id}", h.DeleteMark)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Post("/", h.PostNotification)
			})

			r.Route("/schedule", func(r chi.Router) {
				r.Get("/", h.ListSchedule)
				r.Put("/", h.ReplaceSchedule)
			})

			r.Route("/config", func(r chi.Router) {
				r.Get("/", h.GetConfig)
				r.Put("/", h.PutConfig)
			})

			r.Route("/session", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Put("/", h.PutSession)
				r.Delete("/", h.DeleteSession)
			})

			// ========================
			// Sync, Import and Export
			// ========================
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitHeavy())
				r.Post("/sync/pull", h.SyncPull)
				r.Post("/sync/push", h.SyncPush)
				r.Post("/roster/import", h.ImportRoster)
				r.Get("/export.xlsx", h.ExportWorkbook)
			})
		})
	})

	// ========================
	// Prometheus
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}

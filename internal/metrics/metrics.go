// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

// Package metrics holds the Prometheus instruments for the record store,
// repositories, sync engine, change bus, WebSocket hub and local API.
// Everything is registered on the default registry through promauto and
// exposed by the /metrics handler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Local store
	StoreWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schoolbook_store_write_duration_seconds",
			Help:    "Duration of slot writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"slot"},
	)

	StoreWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolbook_store_write_errors_total",
			Help: "Total number of failed slot writes",
		},
		[]string{"slot", "reason"}, // reason: "quota", "encode", "storage"
	)

	StoreSlotBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "schoolbook_store_slot_bytes",
			Help: "Size in bytes of the last value written to each slot",
		},
		[]string{"slot"},
	)

	StoreCorruptReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolbook_store_corrupt_reads_total",
			Help: "Slot reads that could not be decoded and were treated as empty",
		},
		[]string{"slot"},
	)

	StoreGCRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schoolbook_store_gc_runs_total",
			Help: "Total number of value log GC passes",
		},
	)

	// Repositories
	RepositoryMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolbook_repository_mutations_total",
			Help: "Total number of repository mutations",
		},
		[]string{"collection", "operation", "result"}, // result: "success", "invalid", "error", "noop"
	)

	RepositoryRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "schoolbook_repository_records",
			Help: "Number of records in each collection after the last write",
		},
		[]string{"collection"},
	)

	// Sync engine
	SyncPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolbook_sync_pushes_total",
			Help: "Total number of push attempts",
		},
		[]string{"result"}, // "success", "failure", "skipped"
	)

	SyncPushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "schoolbook_sync_push_duration_seconds",
			Help:    "Duration of full-dataset pushes",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	SyncPushBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "schoolbook_sync_push_payload_bytes",
			Help:    "Size of push payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	SyncPushesCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schoolbook_sync_pushes_coalesced_total",
			Help: "Push requests merged into an already pending push",
		},
	)

	SyncPulls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolbook_sync_pulls_total",
			Help: "Total number of pull attempts",
		},
		[]string{"result"}, // "success" or a sync error kind
	)

	SyncPullDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "schoolbook_sync_pull_duration_seconds",
			Help:    "Duration of pulls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "schoolbook_sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful sync operation",
		},
		[]string{"direction"}, // "push", "pull"
	)

	// Change bus
	BusPublishes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schoolbook_bus_publishes_total",
			Help: "Total number of change notifications published",
		},
	)

	BusListenerPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schoolbook_bus_listener_panics_total",
			Help: "Listener panics recovered during delivery",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// WebSocket
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Local API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordStoreWrite records a slot write. reason is ignored when err is nil.
func RecordStoreWrite(slot string, size int, duration time.Duration, reason string, err error) {
	StoreWriteDuration.WithLabelValues(slot).Observe(duration.Seconds())
	if err != nil {
		StoreWriteErrors.WithLabelValues(slot, reason).Inc()
		return
	}
	StoreSlotBytes.WithLabelValues(slot).Set(float64(size))
}

// RecordCorruptRead counts a slot that failed to decode.
func RecordCorruptRead(slot string) {
	StoreCorruptReads.WithLabelValues(slot).Inc()
}

// RecordMutation records one repository mutation and, on success, the new size.
func RecordMutation(collection, operation, result string, records int) {
	RepositoryMutations.WithLabelValues(collection, operation, result).Inc()
	if result == "success" {
		RepositoryRecords.WithLabelValues(collection).Set(float64(records))
	}
}

// RecordPush records a push attempt.
func RecordPush(result string, payloadBytes int, duration time.Duration) {
	SyncPushes.WithLabelValues(result).Inc()
	if result == "skipped" {
		return
	}
	SyncPushDuration.Observe(duration.Seconds())
	SyncPushBytes.Observe(float64(payloadBytes))
	if result == "success" {
		SyncLastSuccess.WithLabelValues("push").Set(float64(time.Now().Unix()))
	}
}

// RecordPull records a pull attempt. result is "success" or an error kind.
func RecordPull(result string, duration time.Duration) {
	SyncPulls.WithLabelValues(result).Inc()
	SyncPullDuration.Observe(duration.Seconds())
	if result == "success" {
		SyncLastSuccess.WithLabelValues("pull").Set(float64(time.Now().Unix()))
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

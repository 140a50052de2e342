// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/schoolbook/internal/logging"
)

// RequestSample is one observed request.
type RequestSample struct {
	Route      string    `json:"route"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// RouteStats aggregates the samples of one route.
type RouteStats struct {
	Route        string  `json:"route"`
	RequestCount int     `json:"request_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        int64   `json:"p50_ms"`
	P95MS        int64   `json:"p95_ms"`
	MaxMS        int64   `json:"max_ms"`
}

// LatencyMonitor keeps a sliding window of recent request latencies so the
// health endpoint can report slow routes without a Prometheus server.
type LatencyMonitor struct {
	mu        sync.RWMutex
	samples   []RequestSample
	window    int
	slowAfter time.Duration
}

// NewLatencyMonitor keeps the last window samples and warns about requests
// slower than slowAfter (0 disables the warning).
func NewLatencyMonitor(window int, slowAfter time.Duration) *LatencyMonitor {
	if window <= 0 {
		window = 1000
	}
	return &LatencyMonitor{
		samples:   make([]RequestSample, 0, window),
		window:    window,
		slowAfter: slowAfter,
	}
}

// Record adds a sample, evicting the oldest once the window is full.
func (lm *LatencyMonitor) Record(s RequestSample) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if len(lm.samples) == lm.window {
		copy(lm.samples, lm.samples[1:])
		lm.samples = lm.samples[:lm.window-1]
	}
	lm.samples = append(lm.samples, s)
}

// Stats returns per-route aggregates, busiest route first.
func (lm *LatencyMonitor) Stats() []RouteStats {
	lm.mu.RLock()
	byRoute := make(map[string][]int64)
	for _, s := range lm.samples {
		key := s.Method + " " + s.Route
		byRoute[key] = append(byRoute[key], s.DurationMS)
	}
	lm.mu.RUnlock()

	stats := make([]RouteStats, 0, len(byRoute))
	for route, durations := range byRoute {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		var sum int64
		for _, d := range durations {
			sum += d
		}
		stats = append(stats, RouteStats{
			Route:        route,
			RequestCount: len(durations),
			AvgMS:        float64(sum) / float64(len(durations)),
			P50MS:        percentile(durations, 0.50),
			P95MS:        percentile(durations, 0.95),
			MaxMS:        durations[len(durations)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Route < stats[j].Route
	})
	return stats
}

// Recent returns up to n of the newest samples, oldest first.
func (lm *LatencyMonitor) Recent(n int) []RequestSample {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	if n > len(lm.samples) {
		n = len(lm.samples)
	}
	recent := make([]RequestSample, n)
	copy(recent, lm.samples[len(lm.samples)-n:])
	return recent
}

// Middleware records every request passing through it.
func (lm *LatencyMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		elapsed := time.Since(start)
		route := routePattern(r)
		lm.Record(RequestSample{
			Route:      route,
			Method:     r.Method,
			DurationMS: elapsed.Milliseconds(),
			StatusCode: wrapper.statusCode,
			Timestamp:  start,
		})

		if lm.slowAfter > 0 && elapsed > lm.slowAfter {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", elapsed).
				Msg("Slow request")
		}
	})
}

// percentile picks the nearest-rank value from sorted.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Package metrics defines the Prometheus instrumentation for locusd.
// All collectors are registered with the default registry via promauto and
// exposed on GET /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FixesReceived counts fixes accepted by POST /location.
	FixesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locus_fixes_received_total",
		Help: "Total number of GPS fixes accepted",
	})

	// FixesRejected counts submissions rejected by validation.
	FixesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locus_fixes_rejected_total",
		Help: "Total number of GPS fix submissions rejected",
	})

	// StoreSize tracks the number of fixes currently held in memory.
	StoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "locus_store_fixes",
		Help: "Number of fixes currently in the store",
	})

	// StoreEvictions counts fixes dropped when the store cap is reached.
	StoreEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locus_store_evictions_total",
		Help: "Total number of fixes evicted by the store cap",
	})

	// PersistDuration observes how long store snapshots take to reach disk.
	PersistDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "locus_store_persist_duration_seconds",
		Help:    "Duration of store persistence writes",
		Buckets: prometheus.DefBuckets,
	})

	// PersistErrors counts failed persistence writes.
	PersistErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locus_store_persist_errors_total",
		Help: "Total number of failed store persistence writes",
	})

	// HTTPRequestsTotal counts API requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locus_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes API request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "locus_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// WebSocketConnections tracks currently connected live-feed clients.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "locus_websocket_connections",
		Help: "Number of connected WebSocket clients",
	})

	// WebSocketMessagesSent counts messages broadcast to live-feed clients.
	WebSocketMessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locus_websocket_messages_sent_total",
		Help: "Total number of WebSocket messages sent",
	})
)

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPersist records one persistence attempt.
func RecordPersist(duration time.Duration, err error) {
	PersistDuration.Observe(duration.Seconds())
	if err != nil {
		PersistErrors.Inc()
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package metrics registers and exposes the Prometheus instrumentation
// of the backend: HTTP request counters and latencies plus the security
// counters for login outcomes and brute-force blocks.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcome labels.
const (
	LoginOutcomeSuccess         = "success"
	LoginOutcomeUserNotFound    = "user_not_found"
	LoginOutcomeInvalidPassword = "invalid_password"
	LoginOutcomeBlocked         = "blocked"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	loginOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_outcomes_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	bruteForceBlocks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_brute_force_blocks_total",
		Help: "Requests rejected because the identifier is brute-force blocked.",
	})
)

// Init registers all collectors with the default registry. Call once at
// process start.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, loginOutcomes, bruteForceBlocks)
}

// Handler returns the /metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records one completed request. The path should be
// the route pattern, not the raw URL, to bound label cardinality.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	httpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RequestStarted and RequestFinished bracket the in-flight gauge.
func RequestStarted()  { httpInFlight.Inc() }
func RequestFinished() { httpInFlight.Dec() }

// CountLogin records one login attempt by outcome label.
func CountLogin(outcome string) {
	loginOutcomes.WithLabelValues(outcome).Inc()
}

// CountBruteForceBlock records one request rejected while blocked.
func CountBruteForceBlock() {
	bruteForceBlocks.Inc()
}

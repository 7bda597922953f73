// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Exporter self-instrumentation. These describe the health of the exporter
// itself and are published alongside the channels_* families on the same
// scrape endpoint.

var (
	// PollDuration tracks the duration of one full poll pass (all sub-steps).
	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "channelscope_poll_duration_seconds",
			Help:    "Duration of a full DVR poll pass in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PollErrors counts failed poll sub-steps by step name.
	PollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelscope_poll_errors_total",
			Help: "Total number of failed poll sub-steps",
		},
		[]string{"step"}, // "streams", "recordings", "clients"
	)

	// PollLastSuccess is the Unix timestamp of the last fully successful pass.
	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "channelscope_poll_last_success_timestamp",
			Help: "Unix timestamp of the last poll pass with no failed sub-step",
		},
	)

	// GeoIPLookups counts geolocation lookups by outcome.
	GeoIPLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelscope_geoip_lookups_total",
			Help: "Total number of GeoIP lookups",
		},
		[]string{"result"}, // "hit", "miss", "skipped"
	)

	// CircuitBreakerState reports the DVR client breaker state
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channelscope_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests counts requests through the breaker by result.
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channelscope_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// AppInfo carries version and build information.
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "channelscope_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordPoll records a completed poll pass.
func RecordPoll(duration time.Duration, failedSteps int) {
	PollDuration.Observe(duration.Seconds())
	if failedSteps == 0 {
		PollLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordGeoIPLookup records a lookup outcome.
func RecordGeoIPLookup(result string) {
	GeoIPLookups.WithLabelValues(result).Inc()
}

// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Label schemas for the presence families. Order is part of the contract:
// sample rows are positional.
var (
	StreamLabels    = []string{"ip", "channel", "latitude", "longitude"}
	RecordingLabels = []string{"name", "status", "channel"}
	ClientLabels    = []string{
		"app_build",
		"app_bundle",
		"app_version",
		"connected",
		"device",
		"hostname",
		"id",
		"machine_id",
		"platform",
		"remote_ip",
		"seen_at",
		"seen_from",
	}
)

// Registry owns every gauge family Channelscope publishes. It is an
// explicitly injected dependency of both the poller (writer) and the scrape
// server (reader); its lifecycle is process start to process stop.
type Registry struct {
	Streams    *Family
	Recordings *Family
	Clients    *Family
	Shows      prometheus.Gauge
	Airings    prometheus.Gauge
}

// NewRegistry creates the gauge families and registers them on reg.
// Pass prometheus.DefaultRegisterer in production so the families share the
// scrape endpoint with the promauto self-metrics; pass a fresh registry in
// tests.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		Streams:    NewFamily("channels_streams", "Current streams", StreamLabels),
		Recordings: NewFamily("channels_recordings", "Current recordings", RecordingLabels),
		Clients:    NewFamily("channels_clients", "Current clients", ClientLabels),
		Shows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "channels_shows",
			Help: "Current shows",
		}),
		Airings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "channels_airings",
			Help: "Current airings",
		}),
	}

	reg.MustRegister(r.Streams, r.Recordings, r.Clients, r.Shows, r.Airings)
	return r
}

// StreamSample builds a channels_streams label row.
func StreamSample(ip, channel, latitude, longitude string) []string {
	return []string{ip, channel, latitude, longitude}
}

// RecordingSample builds a channels_recordings label row.
func RecordingSample(name, status, channel string) []string {
	return []string{name, status, channel}
}

// ClientSample builds a channels_clients label row in schema order.
func ClientSample(appBuild, appBundle, appVersion, connected, device, hostname,
	id, machineID, platform, remoteIP, seenAt, seenFrom string) []string {
	return []string{
		appBuild,
		appBundle,
		appVersion,
		connected,
		device,
		hostname,
		id,
		machineID,
		platform,
		remoteIP,
		seenAt,
		seenFrom,
	}
}

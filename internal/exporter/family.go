// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

// Package exporter holds the gauge families Channelscope publishes.
//
// The channels_streams, channels_recordings and channels_clients families are
// presence indicators: every sample has value 1 and existence of a label
// combination means "this stream/recording/client exists right now". Each
// poll cycle fully replaces a family's sample set, so combinations absent in
// the current cycle disappear rather than reading as zero.
//
// Replacement is double-buffered: Replace swaps the whole sample slice under
// a mutex and Collect reads whichever snapshot is current. A concurrent
// scrape therefore observes either the complete pre-cycle set or the
// complete post-cycle set, never a half-cleared family.
package exporter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Family is a presence gauge family with a fixed ordered label schema.
type Family struct {
	desc      *prometheus.Desc
	labelKeys []string

	mu      sync.RWMutex
	samples [][]string
}

// NewFamily creates a presence family with the given name, help text and
// ordered label keys.
func NewFamily(name, help string, labelKeys []string) *Family {
	return &Family{
		desc:      prometheus.NewDesc(name, help, labelKeys, nil),
		labelKeys: labelKeys,
	}
}

// Replace atomically swaps in the current cycle's sample set. Each sample is
// one ordered label-value row matching the family's label keys; rows with a
// different arity are dropped. Duplicate rows collapse to one sample.
func (f *Family) Replace(samples [][]string) {
	next := make([][]string, 0, len(samples))
	seen := make(map[string]struct{}, len(samples))
	for _, row := range samples {
		if len(row) != len(f.labelKeys) {
			continue
		}
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		next = append(next, row)
	}

	f.mu.Lock()
	f.samples = next
	f.mu.Unlock()
}

// Len returns the number of samples in the current snapshot.
func (f *Family) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.samples)
}

// Describe implements prometheus.Collector.
func (f *Family) Describe(ch chan<- *prometheus.Desc) {
	ch <- f.desc
}

// Collect implements prometheus.Collector. It emits value 1 for every label
// combination in the current snapshot.
func (f *Family) Collect(ch chan<- prometheus.Metric) {
	f.mu.RLock()
	snapshot := f.samples
	f.mu.RUnlock()

	for _, row := range snapshot {
		ch <- prometheus.MustNewConstMetric(f.desc, prometheus.GaugeValue, 1, row...)
	}
}

// rowKey builds a dedup key from a label-value row. Label values may contain
// arbitrary free text, so a non-printable separator keeps rows unambiguous.
func rowKey(row []string) string {
	const sep = "\x1f"
	key := ""
	for i, v := range row {
		if i > 0 {
			key += sep
		}
		key += v
	}
	return key
}

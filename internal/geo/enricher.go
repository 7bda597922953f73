// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package geo

import (
	"context"
	"strconv"

	"github.com/tomtom215/channelscope/internal/logging"
	"github.com/tomtom215/channelscope/internal/metrics"
)

// Loopback is the sentinel the field extractor emits when an activity line
// contains no IP address. It means "unresolved", not a real client, so the
// enricher never sends it to a provider.
const Loopback = "127.0.0.1"

// Enricher resolves IPs to coordinate label values using a provider chain.
// Providers are tried in order until one succeeds. Every failure is absorbed:
// the worst outcome of enrichment is a pair of empty label values.
type Enricher struct {
	providers []Provider
}

// NewEnricher creates an enricher over the given providers.
func NewEnricher(providers ...Provider) *Enricher {
	return &Enricher{providers: providers}
}

// Enrich returns the latitude and longitude label values for ipAddress.
// Absent coordinates are returned as empty strings so the downstream labels
// are emitted as empty rather than omitted.
func (e *Enricher) Enrich(ctx context.Context, ipAddress string) (latitude, longitude string) {
	if ipAddress == Loopback {
		metrics.RecordGeoIPLookup("skipped")
		return "", ""
	}

	for _, provider := range e.providers {
		if !provider.IsAvailable() {
			continue
		}

		loc, err := provider.Lookup(ctx, ipAddress)
		if err != nil {
			logging.Debug().Err(err).Str("provider", provider.Name()).Str("ip", ipAddress).Msg("GeoIP provider failed")
			continue
		}

		metrics.RecordGeoIPLookup("hit")
		return formatCoordinate(loc.Latitude), formatCoordinate(loc.Longitude)
	}

	metrics.RecordGeoIPLookup("miss")
	return "", ""
}

// formatCoordinate renders a coordinate with the shortest exact
// representation, matching how the value appears in the source database.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

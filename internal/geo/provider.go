// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

// Package geo resolves stream client IP addresses to geographic coordinates.
//
// Resolution is strictly best-effort: the poll cycle must never fail because
// a coordinate could not be found. The Enricher therefore absorbs every
// provider error and reports absent coordinates as empty label values.
package geo

import (
	"context"
)

// Location is the result of a successful geolocation lookup.
type Location struct {
	Latitude  float64
	Longitude float64
	Country   string
}

// Provider defines the interface for geolocation lookup backends.
// Implementations can use a local MaxMind database or external APIs.
type Provider interface {
	// Lookup returns geolocation data for the given IP address.
	// Returns nil and an error if the lookup fails or the IP is invalid.
	Lookup(ctx context.Context, ipAddress string) (*Location, error)

	// Name returns the provider name for logging and metrics.
	Name() string

	// IsAvailable checks if the provider is properly configured and available.
	IsAvailable() bool
}

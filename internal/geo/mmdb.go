// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package geo

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/maxminddb-golang"
)

// MMDBProvider implements Provider using a local MaxMind GeoLite2 City
// database. This is the preferred backend: no network round trip, no rate
// limit, and the same data source the original deployment relied on.
// Databases are available from https://dev.maxmind.com/geoip/geolite2-free-geolocation-data
type MMDBProvider struct {
	path string

	mu     sync.Mutex
	reader *maxminddb.Reader
}

// mmdbCityRecord maps the subset of the GeoLite2 City schema we consume.
type mmdbCityRecord struct {
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
	Country struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
}

// NewMMDBProvider creates a provider backed by the database at path.
// The database is opened lazily on first lookup so a missing file degrades
// to an unavailable provider instead of a startup failure.
func NewMMDBProvider(path string) *MMDBProvider {
	return &MMDBProvider{path: path}
}

// Name returns the provider name.
func (p *MMDBProvider) Name() string {
	return "maxmind-mmdb"
}

// IsAvailable returns true when a database path is configured.
func (p *MMDBProvider) IsAvailable() bool {
	return p.path != ""
}

// Lookup resolves ipAddress against the local database.
func (p *MMDBProvider) Lookup(_ context.Context, ipAddress string) (*Location, error) {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ipAddress)
	}

	reader, err := p.open()
	if err != nil {
		return nil, err
	}

	var record mmdbCityRecord
	if err := reader.Lookup(ip, &record); err != nil {
		return nil, fmt.Errorf("mmdb lookup failed for %s: %w", ipAddress, err)
	}

	// The database returns a zero record for addresses it has no data for
	// (private ranges, unallocated space). Treat that as a miss.
	if record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return nil, fmt.Errorf("no location data for %s", ipAddress)
	}

	return &Location{
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
		Country:   record.Country.Names["en"],
	}, nil
}

// Close releases the underlying database handle.
func (p *MMDBProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reader == nil {
		return nil
	}
	err := p.reader.Close()
	p.reader = nil
	return err
}

func (p *MMDBProvider) open() (*maxminddb.Reader, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reader != nil {
		return p.reader, nil
	}
	if p.path == "" {
		return nil, fmt.Errorf("mmdb path not configured")
	}
	reader, err := maxminddb.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mmdb %s: %w", p.path, err)
	}
	p.reader = reader
	return reader, nil
}

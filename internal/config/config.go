// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

// Package config loads Channelscope configuration via Koanf v2 with layered
// sources (highest priority wins):
//
//  1. Environment variables
//  2. Config file (config.yaml)
//  3. Built-in defaults
//
// The environment variable names of the original exporter deployment are
// preserved: CHANNELS_API, POLLING_INTERVAL_SECONDS and EXPORTER_PORT keep
// working unchanged.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the exporter.
type Config struct {
	Channels ChannelsConfig `koanf:"channels"`
	Poll     PollConfig     `koanf:"poll"`
	Geo      GeoConfig      `koanf:"geo"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ChannelsConfig describes the upstream Channels DVR server.
type ChannelsConfig struct {
	// URL is the DVR base URL, e.g. http://localhost:8089.
	URL string `koanf:"url"`

	// Timeout bounds each API request so a hung upstream delays at most one
	// poll sub-step per cycle.
	Timeout time.Duration `koanf:"timeout"`
}

// PollConfig controls the poll loop.
type PollConfig struct {
	// IntervalSeconds is the sleep between poll passes.
	IntervalSeconds int `koanf:"interval_seconds"`
}

// Interval returns the poll interval as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// GeoConfig controls geolocation enrichment of stream IPs.
type GeoConfig struct {
	// MMDBPath points at a local GeoLite2 City database. Empty disables the
	// local provider.
	MMDBPath string `koanf:"mmdb_path"`

	// IPAPIEnabled enables the ip-api.com fallback provider.
	IPAPIEnabled bool `koanf:"ipapi_enabled"`
}

// ServerConfig describes the scrape endpoint.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout is applied as the HTTP server read and write timeout.
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig mirrors logging.Config for koanf unmarshaling.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. These match the
// original exporter deployment: port 9877, five second interval, DVR on
// localhost:8089.
func defaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			URL:     "http://localhost:8089",
			Timeout: 30 * time.Second,
		},
		Poll: PollConfig{
			IntervalSeconds: 5,
		},
		Geo: GeoConfig{
			MMDBPath:     "",
			IPAPIEnabled: true,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    9877,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", c.Poll.IntervalSeconds)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Channels.URL == "" {
		return fmt.Errorf("channels url must not be empty")
	}
	u, err := url.Parse(c.Channels.URL)
	if err != nil {
		return fmt.Errorf("invalid channels url %q: %w", c.Channels.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("channels url %q must use http or https", c.Channels.URL)
	}
	if c.Channels.Timeout <= 0 {
		return fmt.Errorf("channels timeout must be positive, got %s", c.Channels.Timeout)
	}
	return nil
}

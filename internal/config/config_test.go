// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Channels.URL != "http://localhost:8089" {
		t.Errorf("channels url = %q", cfg.Channels.URL)
	}
	if cfg.Poll.IntervalSeconds != 5 {
		t.Errorf("poll interval = %d, want 5", cfg.Poll.IntervalSeconds)
	}
	if cfg.Server.Port != 9877 {
		t.Errorf("server port = %d, want 9877", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if !cfg.Geo.IPAPIEnabled {
		t.Error("ip-api fallback should default to enabled")
	}
}

func TestLoadLegacyEnvironmentVariables(t *testing.T) {
	t.Setenv("CHANNELS_API", "http://dvr.local:8089")
	t.Setenv("POLLING_INTERVAL_SECONDS", "30")
	t.Setenv("EXPORTER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GEOIP_MMDB_PATH", "/data/GeoLite2-City.mmdb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Channels.URL != "http://dvr.local:8089" {
		t.Errorf("channels url = %q", cfg.Channels.URL)
	}
	if cfg.Poll.IntervalSeconds != 30 {
		t.Errorf("poll interval = %d, want 30", cfg.Poll.IntervalSeconds)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("server port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Geo.MMDBPath != "/data/GeoLite2-City.mmdb" {
		t.Errorf("mmdb path = %q", cfg.Geo.MMDBPath)
	}
}

func TestLoadUnknownEnvironmentIgnored(t *testing.T) {
	t.Setenv("CHANNELS_SOMETHING_ELSE", "junk")

	if _, err := Load(); err != nil {
		t.Fatalf("Load with unrelated env var: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("channels:\n  url: http://filehost:8089\npoll:\n  interval_seconds: 15\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Channels.URL != "http://filehost:8089" {
		t.Errorf("channels url = %q, want file value", cfg.Channels.URL)
	}
	if cfg.Poll.IntervalSeconds != 15 {
		t.Errorf("poll interval = %d, want 15", cfg.Poll.IntervalSeconds)
	}
	// Unset keys keep their defaults.
	if cfg.Server.Port != 9877 {
		t.Errorf("server port = %d, want default 9877", cfg.Server.Port)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("EXPORTER_PORT", "5678")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5678 {
		t.Errorf("server port = %d, env should beat file", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Poll.IntervalSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "negative interval",
			mutate:  func(c *Config) { c.Poll.IntervalSeconds = -5 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "empty url",
			mutate:  func(c *Config) { c.Channels.URL = "" },
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			mutate:  func(c *Config) { c.Channels.URL = "ftp://dvr:21" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Channels.Timeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPollInterval(t *testing.T) {
	p := PollConfig{IntervalSeconds: 7}
	if got := p.Interval(); got != 7*time.Second {
		t.Errorf("Interval() = %v, want 7s", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"CHANNELS_API", "channels.url"},
		{"POLLING_INTERVAL_SECONDS", "poll.interval_seconds"},
		{"EXPORTER_PORT", "server.port"},
		{"LOG_FORMAT", "logging.format"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.expected {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

// Channelscope polls a Channels DVR server and republishes its activity,
// recordings, guide and client data as Prometheus gauge metrics.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/channelscope/internal/channels"
	"github.com/tomtom215/channelscope/internal/config"
	"github.com/tomtom215/channelscope/internal/exporter"
	"github.com/tomtom215/channelscope/internal/geo"
	"github.com/tomtom215/channelscope/internal/logging"
	"github.com/tomtom215/channelscope/internal/metrics"
	"github.com/tomtom215/channelscope/internal/poller"
	"github.com/tomtom215/channelscope/internal/server"
	"github.com/tomtom215/channelscope/internal/supervisor"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("dvr_url", cfg.Channels.URL).
		Int("interval_seconds", cfg.Poll.IntervalSeconds).
		Int("port", cfg.Server.Port).
		Msg("Starting Channelscope")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	// The exporter families and the promauto self-metrics share the default
	// registry, so one scrape endpoint serves both.
	registry := exporter.NewRegistry(prometheus.DefaultRegisterer)

	var providers []geo.Provider
	if cfg.Geo.MMDBPath != "" {
		providers = append(providers, geo.NewMMDBProvider(cfg.Geo.MMDBPath))
		logging.Info().Str("path", cfg.Geo.MMDBPath).Msg("Local GeoIP database enabled")
	}
	if cfg.Geo.IPAPIEnabled {
		providers = append(providers, geo.NewIPAPIProvider())
	}
	if len(providers) == 0 {
		logging.Warn().Msg("No geolocation providers configured, coordinate labels will be empty")
	}
	enricher := geo.NewEnricher(providers...)

	client := channels.NewBreakerClient(channels.NewClient(cfg.Channels.URL, cfg.Channels.Timeout))

	router := server.NewRouter(prometheus.DefaultGatherer, client)
	srv := server.New(cfg.Server.Host, cfg.Server.Port, cfg.Server.Timeout, router)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddPollService(poller.New(client, enricher, registry, cfg.Poll.Interval()))
	tree.AddAPIService(srv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("Channelscope stopped")
}

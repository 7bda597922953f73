// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

// Package poller drives the fetch-transform-publish cycle.
//
// One sequential worker polls the DVR at a fixed interval. Each pass runs
// three independent sub-steps in order: streams+guide, recordings, clients.
// A sub-step that fails to fetch or decode is logged and skipped, leaving its
// gauge family at the previous cycle's values; the other sub-steps still run.
// Nothing short of context cancellation stops the loop.
package poller

import (
	"context"
	"time"

	"github.com/tomtom215/channelscope/internal/channels"
	"github.com/tomtom215/channelscope/internal/exporter"
	"github.com/tomtom215/channelscope/internal/extract"
	"github.com/tomtom215/channelscope/internal/logging"
	"github.com/tomtom215/channelscope/internal/metrics"
)

// Enricher resolves an IP to coordinate label values. Implemented by
// geo.Enricher; an interface here keeps the poller testable without a
// geolocation backend.
type Enricher interface {
	Enrich(ctx context.Context, ipAddress string) (latitude, longitude string)
}

// Poller polls the DVR API and refreshes the metrics registry.
type Poller struct {
	client   channels.ClientInterface
	enricher Enricher
	registry *exporter.Registry
	interval time.Duration
}

// New creates a poller. interval must be positive.
func New(client channels.ClientInterface, enricher Enricher, registry *exporter.Registry, interval time.Duration) *Poller {
	return &Poller{
		client:   client,
		enricher: enricher,
		registry: registry,
		interval: interval,
	}
}

// Serve implements suture.Service. It runs an immediate pass, then one pass
// per interval tick until the context is canceled.
func (p *Poller) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", p.interval).Msg("Starting DVR poller")

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("DVR poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll runs one full pass. Sub-step failures are counted but never
// propagated; the next tick is the retry.
func (p *Poller) poll(ctx context.Context) {
	start := time.Now()
	failed := 0

	if err := p.refreshStreams(ctx); err != nil {
		failed++
		metrics.PollErrors.WithLabelValues("streams").Inc()
		logging.Warn().Err(err).Msg("Streams refresh failed, keeping previous values")
	}
	if err := p.refreshRecordings(ctx); err != nil {
		failed++
		metrics.PollErrors.WithLabelValues("recordings").Inc()
		logging.Warn().Err(err).Msg("Recordings refresh failed, keeping previous values")
	}
	if err := p.refreshClients(ctx); err != nil {
		failed++
		metrics.PollErrors.WithLabelValues("clients").Inc()
		logging.Warn().Err(err).Msg("Clients refresh failed, keeping previous values")
	}

	metrics.RecordPoll(time.Since(start), failed)
	logging.Debug().
		Dur("elapsed", time.Since(start)).
		Int("failed_steps", failed).
		Int("streams", p.registry.Streams.Len()).
		Int("recordings", p.registry.Recordings.Len()).
		Int("clients", p.registry.Clients.Len()).
		Msg("Poll pass complete")
}

// refreshStreams republishes channels_streams from the DVR activity map and
// updates the guide counters.
func (p *Poller) refreshStreams(ctx context.Context) error {
	status, err := p.client.Status(ctx)
	if err != nil {
		return err
	}

	samples := make([][]string, 0, len(status.Activity))
	for _, line := range status.Activity {
		ip := extract.IP(line)
		channel := extract.Channel(line)
		latitude, longitude := p.enricher.Enrich(ctx, ip)
		samples = append(samples, exporter.StreamSample(ip, channel, latitude, longitude))
	}

	p.registry.Streams.Replace(samples)
	p.registry.Shows.Set(float64(status.Guide.NumShows))
	p.registry.Airings.Set(float64(status.Guide.NumAirings))
	return nil
}

// refreshRecordings republishes channels_recordings from /dvr/programs.
func (p *Poller) refreshRecordings(ctx context.Context) error {
	programs, err := p.client.Programs(ctx)
	if err != nil {
		return err
	}

	samples := make([][]string, 0, len(programs))
	for name, info := range programs {
		samples = append(samples, exporter.RecordingSample(
			name,
			extract.Status(info),
			extract.Channel(info),
		))
	}

	p.registry.Recordings.Replace(samples)
	return nil
}

// refreshClients republishes channels_clients from /dvr/clients/info.
// Fields pass through verbatim; absent fields become empty label values.
func (p *Poller) refreshClients(ctx context.Context) error {
	clients, err := p.client.ClientsInfo(ctx)
	if err != nil {
		return err
	}

	samples := make([][]string, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		samples = append(samples, exporter.ClientSample(
			c.AppBuild,
			c.AppBundle,
			c.AppVersion,
			c.Connected,
			c.Device,
			c.Hostname,
			c.ID,
			c.MachineID,
			c.Platform,
			c.RemoteIP,
			c.SeenAt,
			c.SeenFrom,
		))
	}

	p.registry.Clients.Replace(samples)
	return nil
}

// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

// Package server exposes the scrape endpoint.
//
// The HTTP surface is deliberately small: /metrics for Prometheus and
// /healthz for liveness probes. The server runs as a supervised service
// and shuts down gracefully on context cancellation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/channelscope/internal/logging"
)

// Pinger reports whether the upstream DVR is reachable. Implemented by
// channels.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the chi router serving /metrics and /healthz.
//
// The health endpoint pings the DVR with a short timeout. An unreachable
// DVR yields 503 so orchestrators can tell "exporter up, upstream down"
// apart from a dead exporter; the exporter itself keeps serving /metrics
// with the last published values either way.
func NewRouter(gatherer prometheus.Gatherer, pinger Pinger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if pinger != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				logging.Debug().Err(err).Msg("Health check ping failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded","upstream":"unreachable"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}

// Server wraps http.Server as a supervised service.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// New creates the scrape endpoint server.
func New(host string, port int, timeout time.Duration, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      handler,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  60 * time.Second,
		},
		shutdownTimeout: 10 * time.Second,
	}
}

// Serve implements suture.Service. ListenAndServe blocks, so it runs in a
// goroutine; cancellation triggers a graceful Shutdown bounded by the
// shutdown timeout. http.ErrServerClosed is the expected result of that
// shutdown and is not reported as a failure.
func (s *Server) Serve(ctx context.Context) error {
	logging.Info().Str("addr", s.httpServer.Addr).Msg("Starting metrics endpoint")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// The original context is canceled, so shutdown gets its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}

		<-errCh
		logging.Info().Msg("Metrics endpoint stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Server) String() string {
	return "metrics-endpoint"
}

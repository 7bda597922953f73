// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package supervisor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/channelscope/internal/logging"
)

// blockingService runs until its context is canceled and counts starts.
type blockingService struct {
	starts  atomic.Int32
	started chan struct{}
}

func newBlockingService() *blockingService {
	return &blockingService{started: make(chan struct{}, 8)}
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	s.started <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", cfg.FailureThreshold)
	}
	if cfg.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", cfg.FailureBackoff)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestTreeRunsServicesInBothLayers(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), DefaultTreeConfig())

	pollSvc := newBlockingService()
	apiSvc := newBlockingService()
	tree.AddPollService(pollSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*blockingService{pollSvc, apiSvc} {
		select {
		case <-svc.started:
		case <-time.After(5 * time.Second):
			t.Fatal("service did not start under supervisor")
		}
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}

func TestTreeZeroConfigGetsDefaults(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), TreeConfig{})
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want default 5.0", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default 10s", tree.config.ShutdownTimeout)
	}
}

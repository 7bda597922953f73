// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package channels

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/channelscope/internal/logging"
	"github.com/tomtom215/channelscope/internal/metrics"
)

// BreakerClient wraps Client with the circuit breaker pattern to prevent
// hammering a DVR server that is down or overloaded. While the circuit is
// open, calls fail immediately; the poller treats that exactly like any other
// fetch failure and leaves the affected family at its prior values.
//
// DETERMINISM NOTE: the breaker uses real time for its interval and timeout
// calculations. The timing determines when to recover from failures, not
// data integrity. For unit tests, test the wrapped client directly.
type BreakerClient struct {
	client ClientInterface
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// Ensure BreakerClient implements ClientInterface
var _ ClientInterface = (*BreakerClient)(nil)

// NewBreakerClient wraps client with a circuit breaker.
// Configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 30 second timeout before attempting recovery (short relative to the
//     poll interval so a recovered DVR is picked up within a few cycles)
//   - Opens after 60% failure rate with minimum 10 requests
func NewBreakerClient(client ClientInterface) *BreakerClient {
	cbName := "channels-dvr-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening DVR API circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("DVR API circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a DVR API call with circuit breaker protection.
func (b *BreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// Ping tests connectivity through the breaker.
func (b *BreakerClient) Ping(ctx context.Context) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.client.Ping(ctx)
	})
	return err
}

// Status retrieves current activity and guide statistics through the breaker.
func (b *BreakerClient) Status(ctx context.Context) (*DVRStatus, error) {
	result, err := b.execute(func() (any, error) {
		return b.client.Status(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*DVRStatus), nil
}

// Programs retrieves the current recordings through the breaker.
func (b *BreakerClient) Programs(ctx context.Context) (map[string]string, error) {
	result, err := b.execute(func() (any, error) {
		return b.client.Programs(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]string), nil
}

// ClientsInfo retrieves connected devices through the breaker.
func (b *BreakerClient) ClientsInfo(ctx context.Context) ([]ClientInfo, error) {
	result, err := b.execute(func() (any, error) {
		return b.client.ClientsInfo(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]ClientInfo), nil
}

// stateToFloat maps breaker states to the gauge encoding.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

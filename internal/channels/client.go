// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

/*
client.go - Channels DVR REST API Client

This file implements a minimal REST client for the Channels DVR server.
It consumes the three status endpoints the exporter republishes:

	GET /dvr               - current activity and guide statistics
	GET /dvr/programs      - recording name -> free-text info line
	GET /dvr/clients/info  - connected client devices

There is no retry or backoff at this layer. A failed call fails exactly one
poll sub-step; the next poll tick is the retry.
*/

package channels

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ClientInterface defines the interface for DVR API operations.
// Both Client and BreakerClient implement this interface.
type ClientInterface interface {
	Ping(ctx context.Context) error
	Status(ctx context.Context) (*DVRStatus, error)
	Programs(ctx context.Context) (map[string]string, error)
	ClientsInfo(ctx context.Context) ([]ClientInfo, error)
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// GuideStats holds the guide database counters reported by the DVR.
// Absent fields decode to zero.
type GuideStats struct {
	NumShows   int `json:"num_shows"`
	NumAirings int `json:"num_airings"`
}

// DVRStatus is the response of GET /dvr. Activity values are free-text
// status lines; internal/extract parses them.
type DVRStatus struct {
	Activity map[string]string `json:"activity"`
	Guide    GuideStats        `json:"guide"`
}

// ClientInfo describes one device connected to the DVR. All fields are
// optional strings passed through verbatim; JSON null decodes to "".
type ClientInfo struct {
	AppBuild   string `json:"app_build"`
	AppBundle  string `json:"app_bundle"`
	AppVersion string `json:"app_version"`
	Connected  string `json:"connected"`
	Device     string `json:"device"`
	Hostname   string `json:"hostname"`
	ID         string `json:"id"`
	MachineID  string `json:"machine_id"`
	Platform   string `json:"platform"`
	RemoteIP   string `json:"remote_ip"`
	SeenAt     string `json:"seen_at"`
	SeenFrom   string `json:"seen_from"`
}

// Client provides access to the Channels DVR REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new DVR API client.
//
// Parameters:
//   - baseURL: DVR server URL (e.g., http://localhost:8089)
//   - timeout: per-request timeout; a hung upstream delays at most one
//     sub-step per cycle
func NewClient(baseURL string, timeout time.Duration) *Client {
	// Normalize URL (remove trailing slash)
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Status retrieves current activity and guide statistics.
func (c *Client) Status(ctx context.Context) (*DVRStatus, error) {
	var status DVRStatus
	if err := c.getJSON(ctx, "/dvr", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Programs retrieves the current recordings as a name -> info line map.
func (c *Client) Programs(ctx context.Context) (map[string]string, error) {
	var programs map[string]string
	if err := c.getJSON(ctx, "/dvr/programs", &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// ClientsInfo retrieves the devices currently known to the DVR.
func (c *Client) ClientsInfo(ctx context.Context) ([]ClientInfo, error) {
	var clients []ClientInfo
	if err := c.getJSON(ctx, "/dvr/clients/info", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Ping tests connectivity to the DVR server.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "/dvr")
	if err != nil {
		return fmt.Errorf("dvr ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dvr ping returned status %d", resp.StatusCode)
	}
	return nil
}

// getJSON performs a GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("dvr %s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("dvr %s returned status %d (failed to read body)", endpoint, resp.StatusCode)
		}
		return fmt.Errorf("dvr %s returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode dvr %s response: %w", endpoint, err)
	}
	return nil
}

// doRequest performs an HTTP GET request against the DVR API.
func (c *Client) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	fullURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package geo

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// IPAPIProvider implements Provider using the free ip-api.com service.
// Rate limit: 45 requests per minute on the free tier, no API key required.
// Used as a fallback when no local MaxMind database is configured.
type IPAPIProvider struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// ipAPIResponse represents the JSON response from ip-api.com.
type ipAPIResponse struct {
	Status  string  `json:"status"`  // "success" or "fail"
	Message string  `json:"message"` // error message when status is "fail"
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Query   string  `json:"query"`
}

// NewIPAPIProvider creates a new ip-api.com provider.
func NewIPAPIProvider() *IPAPIProvider {
	return &IPAPIProvider{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		// 45 requests per minute on the free tier.
		limiter: rate.NewLimiter(rate.Every(time.Minute/45), 45),
		baseURL: "http://ip-api.com/json",
	}
}

// Name returns the provider name.
func (p *IPAPIProvider) Name() string {
	return "ip-api.com"
}

// IsAvailable returns true (ip-api.com requires no configuration).
func (p *IPAPIProvider) IsAvailable() bool {
	return true
}

// Lookup queries ip-api.com for geolocation data.
func (p *IPAPIProvider) Lookup(ctx context.Context, ipAddress string) (*Location, error) {
	if !p.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded for ip-api.com (45 req/min)")
	}

	if ip := net.ParseIP(ipAddress); ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ipAddress)
	}

	url := fmt.Sprintf("%s/%s?fields=status,message,country,lat,lon,query", p.baseURL, ipAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip-api.com: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api.com returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ip-api.com response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("ip-api.com lookup failed: %s", result.Message)
	}

	return &Location{
		Latitude:  result.Lat,
		Longitude: result.Lon,
		Country:   result.Country,
	}, nil
}

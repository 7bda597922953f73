// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

package channels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dvr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"activity": {"a1": "ch12 Streaming from 10.0.0.5"},
			"guide": {"num_shows": 40, "num_airings": 900}
		}`))
	})

	client := NewClient(srv.URL, 5*time.Second)
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}

	if got := status.Activity["a1"]; got != "ch12 Streaming from 10.0.0.5" {
		t.Errorf("activity a1 = %q", got)
	}
	if status.Guide.NumShows != 40 || status.Guide.NumAirings != 900 {
		t.Errorf("guide = %+v, want 40/900", status.Guide)
	}
}

func TestStatusAbsentGuideDefaultsToZero(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"activity": {}}`))
	})

	client := NewClient(srv.URL, 5*time.Second)
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.Guide.NumShows != 0 || status.Guide.NumAirings != 0 {
		t.Errorf("absent guide = %+v, want zeros", status.Guide)
	}
}

func TestPrograms(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dvr/programs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"MyShow": "REC-ch5-details"}`))
	})

	client := NewClient(srv.URL, 5*time.Second)
	programs, err := client.Programs(context.Background())
	if err != nil {
		t.Fatalf("Programs returned error: %v", err)
	}
	if programs["MyShow"] != "REC-ch5-details" {
		t.Errorf("programs = %v", programs)
	}
}

func TestClientsInfo(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dvr/clients/info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{
			"id": "abc",
			"remote_ip": "1.2.3.4",
			"hostname": null
		}]`))
	})

	client := NewClient(srv.URL, 5*time.Second)
	clients, err := client.ClientsInfo(context.Background())
	if err != nil {
		t.Fatalf("ClientsInfo returned error: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("got %d clients, want 1", len(clients))
	}
	if clients[0].ID != "abc" || clients[0].RemoteIP != "1.2.3.4" {
		t.Errorf("client = %+v", clients[0])
	}
	// null and absent fields pass through as empty strings
	if clients[0].Hostname != "" || clients[0].Platform != "" {
		t.Errorf("optional fields = %+v, want empty", clients[0])
	}
}

func TestNon200StatusIsError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Status(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
	if _, err := client.Programs(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
	if _, err := client.ClientsInfo(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestMalformedJSONIsError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Status(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}

func TestNetworkFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, time.Second)
	if _, err := client.Status(context.Background()); err == nil {
		t.Error("expected transport error")
	}
}

func TestTrailingSlashNormalized(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dvr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{}`))
	})

	client := NewClient(srv.URL+"/", 5*time.Second)
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping returned error: %v", err)
	}
}

func TestBreakerClientPassesThrough(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dvr":
			_, _ = w.Write([]byte(`{"activity":{},"guide":{"num_shows":1,"num_airings":2}}`))
		case "/dvr/programs":
			_, _ = w.Write([]byte(`{"A":"REC-ch1"}`))
		case "/dvr/clients/info":
			_, _ = w.Write([]byte(`[]`))
		}
	})

	breaker := NewBreakerClient(NewClient(srv.URL, 5*time.Second))

	status, err := breaker.Status(context.Background())
	if err != nil {
		t.Fatalf("Status through breaker: %v", err)
	}
	if status.Guide.NumShows != 1 {
		t.Errorf("guide shows = %d, want 1", status.Guide.NumShows)
	}

	programs, err := breaker.Programs(context.Background())
	if err != nil {
		t.Fatalf("Programs through breaker: %v", err)
	}
	if programs["A"] != "REC-ch1" {
		t.Errorf("programs = %v", programs)
	}

	clients, err := breaker.ClientsInfo(context.Background())
	if err != nil {
		t.Fatalf("ClientsInfo through breaker: %v", err)
	}
	if len(clients) != 0 {
		t.Errorf("clients = %v, want empty", clients)
	}
}

func TestBreakerClientPropagatesErrors(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	breaker := NewBreakerClient(NewClient(srv.URL, 5*time.Second))
	if _, err := breaker.Status(context.Background()); err == nil {
		t.Error("expected error through breaker")
	}
}

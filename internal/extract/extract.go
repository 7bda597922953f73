// Channelscope - Channels DVR Prometheus Exporter
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/channelscope

// Package extract parses the free-text status lines returned by the Channels
// DVR API into structured values.
//
// The DVR embeds activity and recording details in unstructured strings such
// as "Watching ch6010 from 192.168.1.50" or "Recording ch6021-Show Name".
// The upstream API does not guarantee any stricter schema, so these are
// deliberately loose pattern matches with documented fallback defaults. Every
// function is total: absence of a match is a normal case routed to the
// default, never an error.
package extract

import (
	"regexp"
	"strings"
)

// Defaults returned when the corresponding pattern does not match.
const (
	DefaultIP      = "127.0.0.1"
	DefaultChannel = "ch0"
	DefaultStatus  = "unknown"
)

var (
	// ipPattern matches four dot-separated decimal groups. Groups are matched
	// greedily with no 0-255 bound check, so "999.999.999.999" matches.
	// Tightening this would silently drop values the DVR has historically
	// emitted; the geo layer handles unparseable addresses downstream.
	ipPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+){3}`)

	// channelPattern matches the DVR's channel identifiers, e.g. "ch6010".
	channelPattern = regexp.MustCompile(`ch[0-9]+`)
)

// IP returns the first IPv4-shaped substring of text, or DefaultIP when no
// dotted quad is present. The loopback default doubles as the "unresolved"
// sentinel checked by the geo enricher.
func IP(text string) string {
	if m := ipPattern.FindString(text); m != "" {
		return m
	}
	return DefaultIP
}

// Channel returns the first "ch<digits>" substring of text, or DefaultChannel
// when none is present.
func Channel(text string) string {
	if m := channelPattern.FindString(text); m != "" {
		return m
	}
	return DefaultChannel
}

// Status returns the token before the first '-' in text. Recording info lines
// look like "REC-ch6021-Show Name"; the leading token is the recording state.
// Returns DefaultStatus when text contains no separator.
func Status(text string) string {
	if before, _, ok := strings.Cut(text, "-"); ok {
		return before
	}
	return DefaultStatus
}

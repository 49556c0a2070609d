// Package format maps raw telemetry fields to display strings. Everything
// here is a pure function of its input.
package format

import (
	"fmt"
	"strings"
)

// Placeholder rendered for values the backend did not provide.
const Placeholder = "-"

// ConnMode is the classified connection mode of a node.
type ConnMode string

const (
	ModeLocal   ConnMode = "local"
	ModeP2P     ConnMode = "p2p"
	ModeRelay   ConnMode = "relay"
	ModeUnknown ConnMode = "unknown"
)

// Label returns the badge text for the mode.
func (m ConnMode) Label() string {
	switch m {
	case ModeLocal:
		return "Local"
	case ModeP2P:
		return "P2P"
	case ModeRelay:
		return "Relay"
	default:
		return ""
	}
}

// ClassifyCost classifies the backend's free-text cost hint. Matching is a
// case-insensitive substring check in fixed priority order local, p2p, relay;
// the first rule that matches wins ("P2P-Relay" classifies as p2p).
func ClassifyCost(cost string) ConnMode {
	lower := strings.ToLower(cost)
	switch {
	case strings.Contains(lower, "local"):
		return ModeLocal
	case strings.Contains(lower, "p2p"):
		return ModeP2P
	case strings.Contains(lower, "relay"):
		return ModeRelay
	default:
		return ModeUnknown
	}
}

// CostBadge returns the display text for a cost value: the badge label for a
// recognized mode, the raw value for an unrecognized one, and the placeholder
// when empty.
func CostBadge(cost string) string {
	if mode := ClassifyCost(cost); mode != ModeUnknown {
		return mode.Label()
	}
	if cost == "" {
		return Placeholder
	}
	return cost
}

// MB renders a cumulative byte counter as mebibytes with two decimals.
// Zero renders "0.00"; so does an absent value, which the wire format cannot
// tell apart from a genuine zero.
func MB(bytes uint64) string {
	return fmt.Sprintf("%.2f", float64(bytes)/1048576)
}

// Latency renders a latency measurement with one decimal when it is strictly
// positive. Zero and negative are sentinel values for "not measured" and
// render as the placeholder.
func Latency(ms float64) string {
	if ms <= 0 {
		return Placeholder
	}
	return fmt.Sprintf("%.1f", ms)
}

// VirtualIP strips any /prefix suffix from a CIDR-suffixed address.
func VirtualIP(addr string) string {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}
	return addr
}

// PublicAddr renders the external address, falling back to the placeholder
// for nodes without one.
func PublicAddr(addr string) string {
	if addr == "" {
		return Placeholder
	}
	return addr
}

// ConnType renders the transport label, falling back to the placeholder.
func ConnType(label string) string {
	if label == "" {
		return Placeholder
	}
	return label
}

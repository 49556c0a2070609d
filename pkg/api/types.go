package api

import "encoding/json"

// NodeRecord is one node's telemetry as reported by the mesh backend.
// Field names follow the backend's wire format verbatim.
type NodeRecord struct {
	// VirtualIP is the node's mesh address, usually CIDR-suffixed
	// (e.g. "10.126.126.1/24").
	VirtualIP string `json:"virtual_ip"`

	// PublicAddr is the node's external address or hostname; may be empty
	// for nodes without a reachable public endpoint.
	PublicAddr string `json:"public_addr"`

	// Cost is the backend's free-text hint about how the connection was
	// established. Observed values: "local", "p2p", "relay"; anything else
	// is possible and must be tolerated.
	Cost string `json:"cost"`

	// LatencyMs is the measured round-trip latency. Zero or negative means
	// no measurement is available.
	LatencyMs float64 `json:"latency_ms"`

	// RxBytes and TxBytes are cumulative counters since backend start.
	// Each poll carries the full snapshot, not deltas.
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`

	// ConnType is the tunnel/transport label; may be empty.
	ConnType string `json:"conn_type"`
}

// ErrorEnvelope is the backend's in-band application error. The backend
// overloads its success channel: a 200 response may still carry an error
// marker instead of a node array.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Message returns the most descriptive error text the envelope carries.
func (e *ErrorEnvelope) Message() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Error
}

// IsError reports whether the raw body carries the backend error marker.
// The body must be a JSON object with a non-empty "error" field; a JSON
// array (the normal node list) never matches.
func IsError(body []byte) (*ErrorEnvelope, bool) {
	var env ErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if env.Error == "" {
		return nil, false
	}
	return &env, true
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meshwatch/meshwatch/pkg/api"
)

func TestClient_Fetch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "GET" {
				t.Errorf("expected method GET, got %s", r.Method)
			}

			nodes := []api.NodeRecord{
				{VirtualIP: "10.0.0.5/24", PublicAddr: "203.0.113.9:11010", Cost: "p2p", LatencyMs: 12.3, RxBytes: 1048576, TxBytes: 2048, ConnType: "udp"},
				{VirtualIP: "10.0.0.6/24", Cost: "relay", LatencyMs: 80},
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(nodes)
		}))
		defer server.Close()

		c := New(server.URL, time.Second, nil)
		nodes, err := c.Fetch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d", len(nodes))
		}
		// Response order is authoritative, no re-sorting
		if nodes[0].VirtualIP != "10.0.0.5/24" {
			t.Errorf("wrong first node: %s", nodes[0].VirtualIP)
		}
		if nodes[1].Cost != "relay" {
			t.Errorf("wrong second node cost: %s", nodes[1].Cost)
		}
		if nodes[0].RxBytes != 1048576 {
			t.Errorf("wrong rx_bytes: %d", nodes[0].RxBytes)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		c := New(server.URL, time.Second, nil)
		nodes, err := c.Fetch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(nodes) != 0 {
			t.Errorf("expected empty node list, got %d", len(nodes))
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := New(server.URL, time.Second, nil)
		_, err := c.Fetch(context.Background())

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected *StatusError, got %T (%v)", err, err)
		}
		if statusErr.Status != http.StatusServiceUnavailable {
			t.Errorf("wrong status: %d", statusErr.Status)
		}
		if statusErr.RetryAfter != 30 {
			t.Errorf("wrong retry-after: %d", statusErr.RetryAfter)
		}
	})

	t.Run("backend error in 200 body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(api.ErrorEnvelope{
				Error:   "core not running",
				Details: "easytier core process exited",
			})
		}))
		defer server.Close()

		c := New(server.URL, time.Second, nil)
		_, err := c.Fetch(context.Background())

		var backendErr *BackendError
		if !errors.As(err, &backendErr) {
			t.Fatalf("expected *BackendError, got %T (%v)", err, err)
		}
		if backendErr.Message != "core not running" {
			t.Errorf("wrong message: %s", backendErr.Message)
		}
		if backendErr.Details != "easytier core process exited" {
			t.Errorf("wrong details: %s", backendErr.Details)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"unexpected": "shape"}`))
		}))
		defer server.Close()

		c := New(server.URL, time.Second, nil)
		_, err := c.Fetch(context.Background())

		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("expected *DecodeError, got %T (%v)", err, err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		c := New(server.URL, 50*time.Millisecond, nil)
		start := time.Now()
		_, err := c.Fetch(context.Background())
		elapsed := time.Since(start)

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("expected *RequestError, got %T (%v)", err, err)
		}
		if !reqErr.Timeout() {
			t.Errorf("expected a timeout, got %v", reqErr.Err)
		}
		if elapsed > 2*time.Second {
			t.Errorf("request was not aborted promptly, took %v", elapsed)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		// Grab a port that nothing listens on
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		c := New(url, time.Second, nil)
		_, err := c.Fetch(context.Background())

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("expected *RequestError, got %T (%v)", err, err)
		}
		if reqErr.Timeout() {
			t.Error("connection refused should not report as timeout")
		}
	})
}

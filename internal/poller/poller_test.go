package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meshwatch/meshwatch/internal/client"
	"github.com/meshwatch/meshwatch/internal/state"
	"github.com/meshwatch/meshwatch/pkg/api"
	"github.com/meshwatch/meshwatch/pkg/events"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func collectNotifications(t *testing.T, bus events.Bus, eventType string) *atomic.Int64 {
	t.Helper()
	var count atomic.Int64
	_, err := bus.Subscribe(eventType, func(ctx context.Context, e events.Event) error {
		count.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	return &count
}

func TestPoller_ImmediateFirstPollThenTicks(t *testing.T) {
	var requests atomic.Int64
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode([]api.NodeRecord{{VirtualIP: "10.0.0.1/24"}})
	})

	store := state.NewStore()
	p := New(client.New(server.URL, time.Second, nil), store, nil, 50*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Millisecond)
	defer cancel()
	err := p.Run(ctx)

	if err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	// One immediate poll plus at least two ticks in ~180ms at 50ms cadence
	if got := requests.Load(); got < 3 {
		t.Errorf("expected at least 3 polls, got %d", got)
	}

	snap := store.Snapshot()
	if snap.Loading {
		t.Error("store should have left loading state")
	}
	if len(snap.Nodes) != 1 {
		t.Errorf("expected 1 node, got %d", len(snap.Nodes))
	}
}

func TestPoller_FailureNotifiesOncePerPoll(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	bus := events.NewGookitBus(nil)
	defer bus.Close()
	failed := collectNotifications(t, bus, events.TypePollFailed)

	store := state.NewStore()
	p := New(client.New(server.URL, time.Second, nil), store, bus, time.Minute, nil)

	p.RefreshNow(context.Background())
	p.RefreshNow(context.Background())
	p.RefreshNow(context.Background())

	if got := failed.Load(); got != 3 {
		t.Errorf("expected exactly one notification per failed poll (3), got %d", got)
	}
	if store.Snapshot().Err == "" {
		t.Error("store should carry the failure message")
	}
}

func TestPoller_FailureKeepsPreviousNodes(t *testing.T) {
	var fail atomic.Bool
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode([]api.NodeRecord{{VirtualIP: "10.0.0.1/24"}, {VirtualIP: "10.0.0.2/24"}})
	})

	store := state.NewStore()
	p := New(client.New(server.URL, time.Second, nil), store, nil, time.Minute, nil)

	p.RefreshNow(context.Background())
	fail.Store(true)
	p.RefreshNow(context.Background())

	snap := store.Snapshot()
	if snap.Err == "" {
		t.Fatal("expected an error in state")
	}
	if len(snap.Nodes) != 2 {
		t.Errorf("failed poll must not clear previous nodes, got %d", len(snap.Nodes))
	}
}

func TestPoller_RecoveryNotifiesOnce(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]api.NodeRecord{})
	})

	bus := events.NewGookitBus(nil)
	defer bus.Close()
	recovered := collectNotifications(t, bus, events.TypePollRecovered)

	store := state.NewStore()
	p := New(client.New(server.URL, time.Second, nil), store, bus, time.Minute, nil)

	p.RefreshNow(context.Background())
	fail.Store(false)
	p.RefreshNow(context.Background())
	p.RefreshNow(context.Background())

	if got := recovered.Load(); got != 1 {
		t.Errorf("expected exactly one recovery notification, got %d", got)
	}
	if store.Snapshot().Err != "" {
		t.Errorf("error should be cleared after recovery, got %q", store.Snapshot().Err)
	}
}

func TestPoller_ConcurrentManualRefreshStaysConsistent(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		json.NewEncoder(w).Encode([]api.NodeRecord{{VirtualIP: "10.0.0.1/24"}})
	})

	store := state.NewStore()
	p := New(client.New(server.URL, time.Second, nil), store, nil, 20*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()

	// Hammer manual refreshes while scheduled polls are in flight
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.RefreshNow(context.Background())
		}()
	}
	wg.Wait()

	// The winner is not deterministic; the state must simply be uncorrupted
	snap := store.Snapshot()
	if snap.Loading {
		t.Error("store should have left loading state")
	}
	if snap.Err == "" && len(snap.Nodes) != 1 {
		t.Errorf("inconsistent snapshot: err=%q nodes=%d", snap.Err, len(snap.Nodes))
	}
}

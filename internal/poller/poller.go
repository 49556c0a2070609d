// Package poller drives the fetch-and-store cycle: one immediate poll on
// startup, then a fixed-interval ticker, plus out-of-band manual refreshes.
package poller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/meshwatch/meshwatch/internal/client"
	"github.com/meshwatch/meshwatch/internal/state"
	"github.com/meshwatch/meshwatch/pkg/events"
	"github.com/meshwatch/meshwatch/pkg/logger"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 10 * time.Second

// Poller periodically fetches node telemetry and applies it to the store.
type Poller struct {
	client   *client.Client
	store    *state.Store
	bus      events.Bus
	interval time.Duration
	logger   *logger.Logger

	// seq orders polls so that a slow response resolving late cannot
	// overwrite a fresher snapshot.
	seq     atomic.Uint64
	failing atomic.Bool
}

// New creates a new poller writing into store and notifying on bus.
func New(c *client.Client, store *state.Store, bus events.Bus, interval time.Duration, log *logger.Logger) *Poller {
	if log == nil {
		log = logger.NewNop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Poller{
		client:   c,
		store:    store,
		bus:      bus,
		interval: interval,
		logger:   log,
	}
}

// Run polls once immediately, then on every tick until ctx is cancelled.
// Cancellation stops the ticker deterministically; no poll outlives Run
// beyond the request already in flight, which the context also aborts.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("starting telemetry poller",
		"endpoint", p.client.Endpoint(),
		"interval", p.interval)

	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped due to context cancellation")
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// RefreshNow performs a manual poll on the caller's goroutine. It does not
// reset the ticker, and it may overlap a scheduled poll; the sequence check
// in the store resolves whichever resolves late.
func (p *Poller) RefreshNow(ctx context.Context) {
	p.pollOnce(ctx)
}

// pollOnce performs a single fetch-and-apply cycle.
func (p *Poller) pollOnce(ctx context.Context) {
	seq := p.seq.Add(1)

	nodes, err := p.client.Fetch(ctx)
	if err != nil {
		p.logger.Warn("poll failed", "seq", seq, "error", err)

		if p.store.ApplyFailure(seq, err.Error()) {
			p.failing.Store(true)
			p.notify(ctx, events.NewPollFailed(seq, err.Error()))
		}
		return
	}

	p.logger.Debug("poll succeeded", "seq", seq, "nodes", len(nodes))

	if p.store.ApplySuccess(seq, nodes) && p.failing.Swap(false) {
		p.notify(ctx, events.NewPollRecovered(seq, "backend reachable again"))
	}
}

func (p *Poller) notify(ctx context.Context, n *events.Notification) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, n); err != nil {
		p.logger.Warn("failed to publish notification", "type", n.Type(), "error", err)
	}
}

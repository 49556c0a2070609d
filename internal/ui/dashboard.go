// Package ui renders the display state as a live terminal dashboard.
package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/meshwatch/meshwatch/internal/format"
	"github.com/meshwatch/meshwatch/internal/state"
	"github.com/meshwatch/meshwatch/pkg/events"
	"github.com/meshwatch/meshwatch/pkg/logger"
)

const notificationHold = 5 * time.Second

var (
	uiBorderColor = tcell.ColorGray
	uiTitleColor  = tcell.ColorTeal
)

// Page names; exactly one is visible at a time.
const (
	pageTable   = "table"
	pageError   = "error"
	pageLoading = "loading"
	pageEmpty   = "empty"
)

// Dashboard is the tview front-end over a state.Store. All primitive access
// happens on the tview event loop via QueueUpdateDraw.
type Dashboard struct {
	app   *tview.Application
	pages *tview.Pages

	table       *tview.Table
	errorView   *tview.TextView
	loadingView *tview.TextView
	emptyView   *tview.TextView
	statusBar   *tview.TextView

	store   *state.Store
	refresh func()
	logger  *logger.Logger

	noteMu  sync.Mutex
	note    string
	noteSeq int
}

// New creates a dashboard reading from store. refresh is invoked on the
// manual-refresh key and from the error panel; it must be safe to call from
// the UI goroutine.
func New(store *state.Store, refresh func(), log *logger.Logger) *Dashboard {
	if log == nil {
		log = logger.NewNop()
	}

	d := &Dashboard{
		app:     tview.NewApplication(),
		pages:   tview.NewPages(),
		store:   store,
		refresh: refresh,
		logger:  log,
	}
	d.buildViews()
	return d
}

func (d *Dashboard) buildViews() {
	d.table = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(false, false)
	d.table.SetBorder(true).
		SetTitle(" Mesh Nodes ").
		SetTitleColor(uiTitleColor).
		SetBorderColor(uiBorderColor)

	d.errorView = newMessageView(" Error ")
	d.errorView.SetDynamicColors(true)
	d.loadingView = newMessageView(" Mesh Nodes ")
	d.loadingView.SetText("\n  Fetching node telemetry...")
	d.emptyView = newMessageView(" Mesh Nodes ")
	d.emptyView.SetText("\n  No nodes reported by the backend.\n\n  Press r to refresh.")

	d.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	d.pages.AddPage(pageTable, d.table, true, false)
	d.pages.AddPage(pageError, d.errorView, true, false)
	d.pages.AddPage(pageEmpty, d.emptyView, true, false)
	d.pages.AddPage(pageLoading, d.loadingView, true, true)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.pages, 0, 1, true).
		AddItem(d.statusBar, 1, 0, false)
	d.app.SetRoot(root, true)

	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyCtrlC, event.Rune() == 'q':
			d.app.Stop()
			return nil
		case event.Rune() == 'r':
			if d.refresh != nil {
				go d.refresh()
			}
			return nil
		}
		return event
	})
}

// Run drives the dashboard until quit or ctx cancellation. It wires the
// store's change callback and the notification bus, and unwires both on
// return so nothing dangles past the dashboard's lifetime.
func (d *Dashboard) Run(ctx context.Context, bus events.Bus) error {
	d.store.OnChange(func(snap state.Snapshot) {
		d.app.QueueUpdateDraw(func() {
			d.render(snap)
		})
	})
	defer d.store.OnChange(nil)

	var unsubs []events.UnsubscribeFunc
	if bus != nil {
		for _, eventType := range []string{events.TypePollFailed, events.TypePollRecovered} {
			unsub, err := bus.Subscribe(eventType, d.onNotification)
			if err != nil {
				return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
			}
			unsubs = append(unsubs, unsub)
		}
	}
	defer func() {
		for _, unsub := range unsubs {
			if err := unsub(); err != nil {
				d.logger.Warn("failed to unsubscribe", "error", err)
			}
		}
	}()

	stop := context.AfterFunc(ctx, d.app.Stop)
	defer stop()

	d.render(d.store.Snapshot())
	return d.app.Run()
}

// onNotification surfaces a transient message in the status bar and clears
// it after a short hold, unless a newer one replaced it.
func (d *Dashboard) onNotification(ctx context.Context, e events.Event) error {
	n, ok := e.(*events.Notification)
	if !ok {
		return fmt.Errorf("unexpected event payload: %T", e)
	}

	d.noteMu.Lock()
	d.noteSeq++
	seq := d.noteSeq
	if n.Severity == events.SeverityError {
		d.note = fmt.Sprintf("[red]✗ %s[-]", tview.Escape(n.Message))
	} else {
		d.note = fmt.Sprintf("[green]✓ %s[-]", tview.Escape(n.Message))
	}
	d.noteMu.Unlock()

	d.redrawStatus()

	time.AfterFunc(notificationHold, func() {
		d.noteMu.Lock()
		if d.noteSeq == seq {
			d.note = ""
		}
		d.noteMu.Unlock()
		d.redrawStatus()
	})
	return nil
}

func (d *Dashboard) redrawStatus() {
	d.app.QueueUpdateDraw(func() {
		d.renderStatus(d.store.Snapshot())
	})
}

// render redraws everything for the given snapshot. Must run on the UI
// goroutine.
func (d *Dashboard) render(snap state.Snapshot) {
	switch pageFor(snap) {
	case pageError:
		d.errorView.SetText(fmt.Sprintf("\n  %s\n\n  Press r to retry.", tview.Escape(snap.Err)))
		d.pages.SwitchToPage(pageError)
	case pageLoading:
		d.pages.SwitchToPage(pageLoading)
	case pageEmpty:
		d.pages.SwitchToPage(pageEmpty)
	default:
		d.renderTable(snap)
		d.pages.SwitchToPage(pageTable)
	}
	d.renderStatus(snap)
}

func (d *Dashboard) renderTable(snap state.Snapshot) {
	d.table.Clear()

	headers := []string{"Virtual IP", "Public Addr", "Mode", "Latency (ms)", "RX (MB)", "TX (MB)", "Tunnel"}
	for col, h := range headers {
		d.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(uiTitleColor).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}

	for i, node := range snap.Nodes {
		row := i + 1
		d.table.SetCell(row, 0, tview.NewTableCell(format.VirtualIP(node.VirtualIP)))
		d.table.SetCell(row, 1, tview.NewTableCell(format.PublicAddr(node.PublicAddr)))

		mode := format.ClassifyCost(node.Cost)
		d.table.SetCell(row, 2, tview.NewTableCell(format.CostBadge(node.Cost)).
			SetTextColor(badgeColor(mode)))

		d.table.SetCell(row, 3, tview.NewTableCell(format.Latency(node.LatencyMs)).
			SetAlign(tview.AlignRight))
		d.table.SetCell(row, 4, tview.NewTableCell(format.MB(node.RxBytes)).
			SetAlign(tview.AlignRight))
		d.table.SetCell(row, 5, tview.NewTableCell(format.MB(node.TxBytes)).
			SetAlign(tview.AlignRight))
		d.table.SetCell(row, 6, tview.NewTableCell(format.ConnType(node.ConnType)))
	}
}

func (d *Dashboard) renderStatus(snap state.Snapshot) {
	d.noteMu.Lock()
	note := d.note
	d.noteMu.Unlock()

	d.statusBar.SetText(statusLine(snap, note))
}

// statusLine builds the one-line footer: last update, node count, transient
// note, key hints.
func statusLine(snap state.Snapshot, note string) string {
	var updated string
	if snap.UpdatedAt.IsZero() {
		updated = "never"
	} else {
		updated = snap.UpdatedAt.Format("15:04:05")
	}

	line := fmt.Sprintf(" updated: %s | nodes: %d", updated, len(snap.Nodes))
	if note != "" {
		line += " | " + note
	}
	return line + " | [gray]r refresh · q quit[-]"
}

// pageFor selects the visible panel. Priority: error, then loading, then
// empty list, then the table.
func pageFor(snap state.Snapshot) string {
	switch {
	case snap.Err != "":
		return pageError
	case snap.Loading:
		return pageLoading
	case len(snap.Nodes) == 0:
		return pageEmpty
	default:
		return pageTable
	}
}

func badgeColor(mode format.ConnMode) tcell.Color {
	switch mode {
	case format.ModeLocal:
		return tcell.ColorGreen
	case format.ModeP2P:
		return tcell.ColorAqua
	case format.ModeRelay:
		return tcell.ColorYellow
	default:
		return tcell.ColorSilver
	}
}

func newMessageView(title string) *tview.TextView {
	tv := tview.NewTextView().
		SetDynamicColors(false).
		SetTextAlign(tview.AlignLeft)
	tv.SetBorder(true).
		SetTitle(title).
		SetTitleColor(uiTitleColor).
		SetBorderColor(uiBorderColor)
	return tv
}

package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/meshwatch/meshwatch/internal/state"
	"github.com/meshwatch/meshwatch/pkg/api"
)

func TestPageFor_Priority(t *testing.T) {
	tests := []struct {
		name string
		snap state.Snapshot
		want string
	}{
		{
			name: "error wins over everything",
			snap: state.Snapshot{Err: "timeout", Loading: true, Nodes: []api.NodeRecord{{}}},
			want: pageError,
		},
		{
			name: "loading before first poll",
			snap: state.Snapshot{Loading: true},
			want: pageLoading,
		},
		{
			name: "empty list after successful poll",
			snap: state.Snapshot{},
			want: pageEmpty,
		},
		{
			name: "table when nodes present",
			snap: state.Snapshot{Nodes: []api.NodeRecord{{VirtualIP: "10.0.0.1/24"}}},
			want: pageTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageFor(tt.snap); got != tt.want {
				t.Errorf("pageFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatusLine(t *testing.T) {
	t.Run("before first success", func(t *testing.T) {
		line := statusLine(state.Snapshot{}, "")
		if !strings.Contains(line, "updated: never") {
			t.Errorf("expected 'updated: never', got %q", line)
		}
		if !strings.Contains(line, "nodes: 0") {
			t.Errorf("expected node count, got %q", line)
		}
	})

	t.Run("with update time and note", func(t *testing.T) {
		at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
		snap := state.Snapshot{
			Nodes:     []api.NodeRecord{{}, {}},
			UpdatedAt: at,
		}
		line := statusLine(snap, "[red]✗ boom[-]")
		if !strings.Contains(line, "updated: 15:04:05") {
			t.Errorf("expected timestamp, got %q", line)
		}
		if !strings.Contains(line, "nodes: 2") {
			t.Errorf("expected node count, got %q", line)
		}
		if !strings.Contains(line, "boom") {
			t.Errorf("expected note, got %q", line)
		}
	})
}

package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the poller.
const (
	TypePollFailed    = "poll.failed"
	TypePollRecovered = "poll.recovered"
)

// Severity classifies a notification for display purposes.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notification is a transient, user-visible message about a poll outcome.
// The UI shows it briefly and then drops it; it is never persisted.
type Notification struct {
	id        string
	eventType string
	timestamp time.Time

	Severity Severity
	Message  string
	// Seq is the poll sequence number that produced this notification.
	Seq uint64
}

// NewPollFailed creates a notification for a failed poll.
func NewPollFailed(seq uint64, message string) *Notification {
	return newNotification(TypePollFailed, SeverityError, seq, message)
}

// NewPollRecovered creates a notification for the first success after failures.
func NewPollRecovered(seq uint64, message string) *Notification {
	return newNotification(TypePollRecovered, SeverityInfo, seq, message)
}

func newNotification(eventType string, severity Severity, seq uint64, message string) *Notification {
	return &Notification{
		id:        uuid.New().String(),
		eventType: eventType,
		timestamp: time.Now(),
		Severity:  severity,
		Message:   message,
		Seq:       seq,
	}
}

func (n *Notification) Type() string         { return n.eventType }
func (n *Notification) Timestamp() time.Time { return n.timestamp }
func (n *Notification) ID() string           { return n.id }

func (n *Notification) Metadata() map[string]any {
	return map[string]any{
		"severity": string(n.Severity),
		"seq":      n.Seq,
	}
}

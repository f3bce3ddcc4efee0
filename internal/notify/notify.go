// Package notify delivers operational alerts to configured channels.
package notify

import (
	"context"
	"log"
)

// Severity classifies an event for channel-specific formatting.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Event is a single notification.
type Event struct {
	Title    string
	Body     string
	Severity Severity
}

// Notifier delivers events. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// Fanout delivers each event to every wrapped notifier. Best-effort: a
// failing notifier is logged and does not block the others.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, evt Event) error {
	for _, n := range f {
		if err := n.Notify(ctx, evt); err != nil {
			log.Printf("notify: delivery failed: %v", err)
		}
	}
	return nil
}

// Log writes events to the standard logger. It is the fallback channel
// when no external notifier is configured.
type Log struct{}

func (Log) Notify(_ context.Context, evt Event) error {
	log.Printf("notify: [%s] %s: %s", evt.Severity, evt.Title, evt.Body)
	return nil
}

// Color returns the conventional hex color for a severity.
func (s Severity) Color() string {
	switch s {
	case SeverityError:
		return "#d00000"
	case SeverityWarning:
		return "#ffaa00"
	case SeveritySuccess:
		return "#36a64f"
	default:
		return "#439fe0"
	}
}

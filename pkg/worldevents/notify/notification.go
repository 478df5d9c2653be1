// Package notify distributes engine notifications to in-process subscribers
// and, optionally, to Kafka.
//
// Every subscriber owns a bounded buffer. Publish never blocks: when a
// subscriber falls behind, its oldest buffered notification is dropped and
// reported through BusConfig.OnDrop. Delivery order per subscriber equals
// publish order.
package notify

import (
	"context"
	"time"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	KindSystemStarted  Kind = "system.started"
	KindSystemStopped  Kind = "system.stopped"
	KindEventActivated Kind = "event.activated"
	KindEventUpdated   Kind = "event.updated"
	KindEventResolved  Kind = "event.resolved"
	KindDetection      Kind = "subsystem.detection"
)

// Kinds lists every notification kind.
var Kinds = []Kind{
	KindSystemStarted,
	KindSystemStopped,
	KindEventActivated,
	KindEventUpdated,
	KindEventResolved,
	KindDetection,
}

// Notification is one published engine change.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`

	// Event is set for event.* kinds. It is a copy and never aliases engine
	// state.
	Event *model.WorldEvent `json:"event,omitempty"`

	// Detection is set for subsystem.detection.
	Detection *Detection `json:"detection,omitempty"`

	// Previous is the severity before an event.updated change.
	Previous *model.Severity `json:"previous_severity,omitempty"`
}

// Key returns the partitioning key: the event ID when present, otherwise
// the notification ID.
func (n Notification) Key() string {
	if n.Event != nil && n.Event.ID != "" {
		return n.Event.ID
	}
	return n.ID
}

// Detection is a signal reported by an external subsystem listener. When
// Template is set the engine attempts to trigger it as an event.
type Detection struct {
	Source     string          `json:"source"`
	Summary    string          `json:"summary"`
	Severity   model.Severity  `json:"severity"`
	Template   *model.Template `json:"template,omitempty"`
	DetectedAt time.Time       `json:"detected_at"`
}

// Detector watches an external subsystem and reports detections until ctx
// is cancelled.
type Detector interface {
	Run(ctx context.Context, emit func(Detection)) error
}

// DetectorFunc adapts a function into a Detector.
type DetectorFunc func(ctx context.Context, emit func(Detection)) error

// Run implements Detector.
func (f DetectorFunc) Run(ctx context.Context, emit func(Detection)) error {
	return f(ctx, emit)
}

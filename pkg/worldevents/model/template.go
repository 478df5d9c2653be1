package model

import (
	"math"
	"strings"
	"time"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
)

// Template describes an event to trigger manually or from a detector. A
// zero Duration leaves the event open-ended until resolved.
type Template struct {
	Type        EventType     `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Severity    Severity      `json:"severity"`
	Scope       Scope         `json:"scope"`
	Duration    time.Duration `json:"duration,omitempty"`
	Impacts     []Impact      `json:"impacts,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
}

// Validate rejects templates that cannot become a well-formed event.
func (t Template) Validate() error {
	if !t.Type.Valid() {
		return weerrors.Invalid("type", "unknown event type %d", int(t.Type))
	}
	if !t.Severity.Valid() {
		return weerrors.Invalid("severity", "unknown severity %d", int(t.Severity))
	}
	if strings.TrimSpace(t.Title) == "" {
		return weerrors.Invalid("title", "must not be empty")
	}
	if t.Duration < 0 {
		return weerrors.Invalid("duration", "must not be negative, got %s", t.Duration)
	}
	if err := t.Scope.Validate(); err != nil {
		return err
	}
	for i, imp := range t.Impacts {
		if !imp.Kind.Valid() {
			return weerrors.Invalid("impacts", "entry %d has unknown kind %d", i, int(imp.Kind))
		}
		if imp.Magnitude < 0 || math.IsNaN(imp.Magnitude) || math.IsInf(imp.Magnitude, 0) {
			return weerrors.Invalid("impacts", "entry %d magnitude must be a non-negative number", i)
		}
		if imp.Kind.Capped() && imp.Magnitude > 100 {
			return weerrors.Invalid("impacts", "entry %d %s exceeds 100", i, imp.Kind)
		}
	}
	return nil
}

// Package admission caps how many concurrent events of a type may be active
// at or above a given severity.
package admission

import (
	"maps"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// DefaultCap applies to types without an explicit cap.
const DefaultCap = 5

// DefaultCaps holds the per-type caps that differ from DefaultCap.
var DefaultCaps = map[model.EventType]int{
	model.Pandemic: 1,
	model.Economic: 2,
}

// Controller decides whether a candidate event may join the active set.
// A Controller is immutable after construction and safe for concurrent use.
type Controller struct {
	caps       map[model.EventType]int
	defaultCap int
}

// Option configures a Controller.
type Option func(*Controller)

// WithCap sets the cap for one event type.
func WithCap(t model.EventType, n int) Option {
	return func(c *Controller) {
		c.caps[t] = n
	}
}

// WithDefaultCap sets the cap for types without an explicit entry.
func WithDefaultCap(n int) Option {
	return func(c *Controller) {
		c.defaultCap = n
	}
}

// New creates a controller with the default caps.
func New(opts ...Option) *Controller {
	c := &Controller{
		caps:       maps.Clone(DefaultCaps),
		defaultCap: DefaultCap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cap returns the cap in force for t.
func (c *Controller) Cap(t model.EventType) int {
	if n, ok := c.caps[t]; ok {
		return n
	}
	return c.defaultCap
}

// CanAdmit reports whether candidate may be inserted given the currently
// active events. Only active events of the same type with severity at or
// above the candidate's count toward the cap.
func (c *Controller) CanAdmit(candidate model.WorldEvent, active []model.WorldEvent) bool {
	count := 0
	for _, ev := range active {
		if ev.Type == candidate.Type && ev.Severity >= candidate.Severity {
			count++
		}
	}
	return count < c.Cap(candidate.Type)
}

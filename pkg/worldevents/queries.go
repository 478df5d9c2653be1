package worldevents

import (
	"context"
	"fmt"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/forecast"
	"github.com/randalmurphal/worldevents/pkg/worldevents/impact"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/risk"
)

// ActiveEvents returns copies of the live events, oldest first.
func (e *Engine) ActiveEvents() []model.WorldEvent {
	events := e.snapshot()
	for i := range events {
		events[i] = events[i].Clone()
	}
	return events
}

// History returns copies of the resolved events in resolution order.
func (e *Engine) History() []model.WorldEvent {
	return cloneAll(e.history.Snapshot())
}

// Event looks id up among the active events, then in history.
func (e *Engine) Event(id string) (model.WorldEvent, bool) {
	if ev, ok := e.active.Get(id); ok {
		return ev.Clone(), true
	}
	for _, ev := range e.history.Snapshot() {
		if ev.ID == id {
			return ev.Clone(), true
		}
	}
	return model.WorldEvent{}, false
}

// EventsAffectingRoute returns one impact per active event that touches the
// route.
func (e *Engine) EventsAffectingRoute(routeID string) ([]impact.RouteImpact, error) {
	route, ok := e.catalog.Route(routeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, routeID)
	}
	return e.resolver.RouteImpacts(e.ActiveEvents(), route), nil
}

// EventsAffectingPort returns one impact per active event that touches the
// port.
func (e *Engine) EventsAffectingPort(portID string) ([]impact.PortImpact, error) {
	port, ok := e.catalog.Port(portID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPort, portID)
	}
	return e.resolver.PortImpacts(e.ActiveEvents(), port), nil
}

// AssessPort aggregates every active event touching the port into one
// capacity, delay and level reading.
func (e *Engine) AssessPort(portID string) (impact.PortAssessment, error) {
	port, ok := e.catalog.Port(portID)
	if !ok {
		return impact.PortAssessment{}, fmt.Errorf("%w: %q", ErrUnknownPort, portID)
	}
	return e.resolver.AssessPort(e.ActiveEvents(), port), nil
}

// EventsInArea returns the active events whose scope touches bounds.
func (e *Engine) EventsInArea(bounds model.Bounds) ([]model.WorldEvent, error) {
	if !bounds.Valid() {
		return nil, weerrors.Invalid("bounds", "need -90 <= min_lat <= max_lat <= 90 and -180 <= min_lon <= max_lon <= 180")
	}
	return e.resolver.EventsInArea(e.ActiveEvents(), bounds), nil
}

// GlobalRiskAssessment scores the active events and derives the trend from
// recent history.
func (e *Engine) GlobalRiskAssessment() risk.Assessment {
	return e.assessor.Assess(e.active.Snapshot(), e.history.Snapshot(), e.cfg.now())
}

// GenerateEventForecast asks every forecast provider for the next days and
// merges the answers. Failing providers are listed in Degraded.
func (e *Engine) GenerateEventForecast(ctx context.Context, days int) (forecast.Forecast, error) {
	return e.forecast.Generate(ctx, days)
}

func cloneAll(events []model.WorldEvent) []model.WorldEvent {
	out := make([]model.WorldEvent, len(events))
	for i, ev := range events {
		out[i] = ev.Clone()
	}
	return out
}

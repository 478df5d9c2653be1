// Package impact resolves which events touch a route, a port or an area, and
// how hard. Every function here is a pure read over an event snapshot and
// the catalog.
package impact

import (
	"slices"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// Level grades the combined effect of events on a route or port.
type Level int

// Impact levels, weakest first.
const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = []string{"none", "low", "medium", "high", "critical"}

// String returns the level name.
func (l Level) String() string {
	if l >= LevelNone && l <= LevelCritical {
		return levelNames[l]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// RouteImpact is the effect of one event on one route.
type RouteImpact struct {
	Event                 model.WorldEvent `json:"event"`
	RouteID               string           `json:"route_id"`
	Level                 Level            `json:"level"`
	TotalImpact           float64          `json:"total_impact"`
	EstimatedDelay        float64          `json:"estimated_delay"`
	AdditionalCost        float64          `json:"additional_cost"`
	AlternativesAvailable bool             `json:"alternatives_available"`
}

// PortImpact is the effect of one event on one port.
type PortImpact struct {
	Event    model.WorldEvent `json:"event"`
	PortID   string           `json:"port_id"`
	Level    Level            `json:"level"`
	Capacity float64          `json:"capacity"`
	Delays   float64          `json:"delays"`
}

// PortAssessment aggregates every event touching a port.
type PortAssessment struct {
	PortID   string   `json:"port_id"`
	Level    Level    `json:"level"`
	Capacity float64  `json:"capacity"`
	Delays   float64  `json:"delays"`
	EventIDs []string `json:"event_ids"`
}

// Resolver evaluates event scopes against a catalog.
type Resolver struct {
	catalog model.Catalog
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog model.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// RouteImpacts returns one entry per event whose scope intersects route, in
// the order events were given. Events that do not touch the route are
// omitted.
func (r *Resolver) RouteImpacts(events []model.WorldEvent, route model.Route) []RouteImpact {
	ports := r.routePorts(route)
	var out []RouteImpact
	for _, ev := range events {
		if !r.touchesRoute(ev.Scope, route, ports) {
			continue
		}
		total := ev.ImpactTotal(model.ImpactDelayIncrease, model.ImpactCostIncrease, model.ImpactRouteDisruption)
		out = append(out, RouteImpact{
			Event:                 ev,
			RouteID:               route.ID,
			Level:                 routeLevel(total),
			TotalImpact:           total,
			EstimatedDelay:        ev.ImpactTotal(model.ImpactDelayIncrease),
			AdditionalCost:        route.BaseCost * ev.ImpactTotal(model.ImpactCostIncrease) / 100,
			AlternativesAvailable: ev.Scope.Kind != model.ScopeGlobal && len(route.PortIDs) > 2,
		})
	}
	return out
}

func routeLevel(total float64) Level {
	switch {
	case total > 200:
		return LevelCritical
	case total > 100:
		return LevelHigh
	case total > 50:
		return LevelMedium
	case total > 10:
		return LevelLow
	default:
		return LevelNone
	}
}

// PortImpacts returns one entry per event whose scope intersects port.
func (r *Resolver) PortImpacts(events []model.WorldEvent, port model.Port) []PortImpact {
	var out []PortImpact
	for _, ev := range events {
		if !r.touchesPort(ev.Scope, port) {
			continue
		}
		capacity, delays := portEffect([]model.WorldEvent{ev})
		out = append(out, PortImpact{
			Event:    ev,
			PortID:   port.ID,
			Level:    portLevel(capacity, delays),
			Capacity: capacity,
			Delays:   delays,
		})
	}
	return out
}

// AssessPort aggregates all intersecting events: capacity is reduced by the
// single worst closure or capacity reduction, delays add up.
func (r *Resolver) AssessPort(events []model.WorldEvent, port model.Port) PortAssessment {
	var hits []model.WorldEvent
	ids := []string{}
	for _, ev := range events {
		if r.touchesPort(ev.Scope, port) {
			hits = append(hits, ev)
			ids = append(ids, ev.ID)
		}
	}
	capacity, delays := portEffect(hits)
	return PortAssessment{
		PortID:   port.ID,
		Level:    portLevel(capacity, delays),
		Capacity: capacity,
		Delays:   delays,
		EventIDs: ids,
	}
}

func portEffect(events []model.WorldEvent) (capacity, delays float64) {
	worst := 0.0
	for _, ev := range events {
		worst = max(worst, ev.ImpactMax(model.ImpactPortClosure, model.ImpactCapacityReduction))
		delays += ev.ImpactTotal(model.ImpactDelayIncrease)
	}
	return max(0, 100-worst), delays
}

func portLevel(capacity, delays float64) Level {
	switch {
	case capacity < 20:
		return LevelCritical
	case capacity < 50:
		return LevelHigh
	case capacity < 80:
		return LevelMedium
	case delays > 50:
		return LevelMedium
	case delays > 10:
		return LevelLow
	case capacity < 100:
		return LevelLow
	default:
		return LevelNone
	}
}

// EventsInArea returns the events whose scope touches bounds, in input order.
func (r *Resolver) EventsInArea(events []model.WorldEvent, bounds model.Bounds) []model.WorldEvent {
	var out []model.WorldEvent
	for _, ev := range events {
		if r.touchesArea(ev.Scope, bounds) {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Resolver) routePorts(route model.Route) []model.Port {
	ports := make([]model.Port, 0, len(route.PortIDs))
	for _, id := range route.PortIDs {
		if p, ok := r.catalog.Port(id); ok {
			ports = append(ports, p)
		}
	}
	return ports
}

func (r *Resolver) touchesRoute(s model.Scope, route model.Route, ports []model.Port) bool {
	switch s.Kind {
	case model.ScopeGlobal:
		return true
	case model.ScopeRegional:
		for _, p := range ports {
			if s.InRadius(p.Position) {
				return true
			}
		}
	case model.ScopeCountry:
		for _, p := range ports {
			if p.Country == s.Country {
				return true
			}
		}
	case model.ScopePort:
		if _, ok := r.catalog.Port(s.PortID); !ok {
			return false
		}
		return slices.Contains(route.PortIDs, s.PortID)
	case model.ScopeRoute:
		if s.RouteID == route.ID {
			return true
		}
		other, ok := r.catalog.Route(s.RouteID)
		if !ok {
			return false
		}
		for _, id := range other.PortIDs {
			if slices.Contains(route.PortIDs, id) {
				return true
			}
		}
	}
	return false
}

func (r *Resolver) touchesPort(s model.Scope, port model.Port) bool {
	switch s.Kind {
	case model.ScopeGlobal:
		return true
	case model.ScopeRegional:
		return s.InRadius(port.Position)
	case model.ScopeCountry:
		return port.Country == s.Country
	case model.ScopePort:
		return port.ID == s.PortID
	case model.ScopeRoute:
		route, ok := r.catalog.Route(s.RouteID)
		return ok && slices.Contains(route.PortIDs, port.ID)
	}
	return false
}

func (r *Resolver) touchesArea(s model.Scope, b model.Bounds) bool {
	switch s.Kind {
	case model.ScopeGlobal:
		return true
	case model.ScopeRegional:
		return s.Center != nil && b.IntersectsCircle(*s.Center, s.RadiusNM)
	case model.ScopeCountry:
		for _, p := range r.catalog.Ports() {
			if p.Country == s.Country && b.Contains(p.Position) {
				return true
			}
		}
	case model.ScopePort:
		p, ok := r.catalog.Port(s.PortID)
		return ok && b.Contains(p.Position)
	case model.ScopeRoute:
		route, ok := r.catalog.Route(s.RouteID)
		if !ok {
			return false
		}
		for _, p := range r.routePorts(route) {
			if b.Contains(p.Position) {
				return true
			}
		}
	}
	return false
}

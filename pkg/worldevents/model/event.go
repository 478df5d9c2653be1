// Package model defines the value types of the disruption engine: world
// events, their geographic scope and impacts, and the port/route catalog
// contract the engine reads from.
package model

import (
	"slices"
	"time"
)

// EventType classifies a world event.
type EventType int

// Event types.
const (
	Weather EventType = iota
	Political
	Economic
	NaturalDisaster
	Pandemic
	CyberSecurity
	Piracy
	LaborStrike
	Infrastructure
)

// EventTypes lists every event type in declaration order.
var EventTypes = []EventType{
	Weather, Political, Economic, NaturalDisaster, Pandemic,
	CyberSecurity, Piracy, LaborStrike, Infrastructure,
}

var eventTypeNames = []string{
	"weather", "political", "economic", "natural_disaster", "pandemic",
	"cyber_security", "piracy", "labor_strike", "infrastructure",
}

// String returns the snake_case name of the type.
func (t EventType) String() string {
	if t.Valid() {
		return eventTypeNames[t]
	}
	return "unknown"
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return t >= Weather && t <= Infrastructure
}

// ParseEventType resolves a name produced by String.
func ParseEventType(s string) (EventType, bool) {
	return parseName[EventType](eventTypeNames, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(b []byte) error {
	return unmarshalName(eventTypeNames, "event type", b, t)
}

// Severity is an ordered intensity tier.
type Severity int

// Severities, lowest first.
const (
	Low Severity = iota
	Medium
	High
	Critical
)

// Severities lists every severity, lowest first.
var Severities = []Severity{Low, Medium, High, Critical}

var severityNames = []string{"low", "medium", "high", "critical"}

// String returns the lower-case severity name.
func (s Severity) String() string {
	if s.Valid() {
		return severityNames[s]
	}
	return "unknown"
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s >= Low && s <= Critical
}

// Up returns the next higher severity, saturating at Critical.
func (s Severity) Up() Severity {
	if s >= Critical {
		return Critical
	}
	return s + 1
}

// Down returns the next lower severity, saturating at Low.
func (s Severity) Down() Severity {
	if s <= Low {
		return Low
	}
	return s - 1
}

// ParseSeverity resolves a name produced by String.
func ParseSeverity(s string) (Severity, bool) {
	return parseName[Severity](severityNames, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	return unmarshalName(severityNames, "severity", b, s)
}

// Status is the lifecycle state of an event.
type Status int

// Lifecycle states.
const (
	StatusActive Status = iota
	StatusEscalating
	StatusDeEscalating
	StatusResolved
	StatusCancelled
)

var statusNames = []string{"active", "escalating", "de_escalating", "resolved", "cancelled"}

// String returns the status name.
func (s Status) String() string {
	if s >= StatusActive && s <= StatusCancelled {
		return statusNames[s]
	}
	return "unknown"
}

// Live reports whether the status belongs to an event still in the registry.
func (s Status) Live() bool {
	return s == StatusActive || s == StatusEscalating || s == StatusDeEscalating
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	return unmarshalName(statusNames, "status", b, s)
}

// Resolution records why an event left the active registry.
type Resolution int

// Resolution kinds. ResolutionNone is the zero value of a live event.
const (
	ResolutionNone Resolution = iota
	ResolutionNatural
	ResolutionGovernmentIntervention
	ResolutionInternationalAid
	ResolutionPrivateSectorResponse
	ResolutionAutomaticExpiry
	ResolutionManual
)

var resolutionNames = []string{
	"", "natural", "government_intervention", "international_aid",
	"private_sector_response", "automatic_expiry", "manual",
}

// String returns the resolution name; ResolutionNone is "".
func (r Resolution) String() string {
	if r >= ResolutionNone && r <= ResolutionManual {
		return resolutionNames[r]
	}
	return "unknown"
}

// Valid reports whether r is a resolution an event can be closed with.
func (r Resolution) Valid() bool {
	return r > ResolutionNone && r <= ResolutionManual
}

// ParseResolution resolves a name produced by String.
func ParseResolution(s string) (Resolution, bool) {
	r, ok := parseName[Resolution](resolutionNames, s)
	return r, ok && r.Valid()
}

// MarshalText implements encoding.TextMarshaler.
func (r Resolution) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resolution) UnmarshalText(b []byte) error {
	return unmarshalName(resolutionNames, "resolution", b, r)
}

// WorldEvent is a timed disruption with a scope, severity and impacts.
// Values handed out by the engine are snapshots; mutate a Clone, never the
// original.
type WorldEvent struct {
	ID               string     `json:"id"`
	Type             EventType  `json:"type"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Severity         Severity   `json:"severity"`
	Scope            Scope      `json:"scope"`
	Status           Status     `json:"status"`
	StartTime        time.Time  `json:"start_time"`
	EstimatedEndTime *time.Time `json:"estimated_end_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	Impacts          []Impact   `json:"impacts"`
	Tags             []string   `json:"tags,omitempty"`
	Resolution       Resolution `json:"resolution,omitempty"`
}

// Clone returns a deep copy.
func (e WorldEvent) Clone() WorldEvent {
	out := e
	out.Impacts = slices.Clone(e.Impacts)
	out.Tags = slices.Clone(e.Tags)
	if e.Scope.Center != nil {
		c := *e.Scope.Center
		out.Scope.Center = &c
	}
	if e.EstimatedEndTime != nil {
		t := *e.EstimatedEndTime
		out.EstimatedEndTime = &t
	}
	if e.EndTime != nil {
		t := *e.EndTime
		out.EndTime = &t
	}
	return out
}

// Age is the time elapsed since StartTime.
func (e WorldEvent) Age(now time.Time) time.Duration {
	return now.Sub(e.StartTime)
}

// Expired reports whether EstimatedEndTime is set and not after now.
func (e WorldEvent) Expired(now time.Time) bool {
	return e.EstimatedEndTime != nil && !e.EstimatedEndTime.After(now)
}

// ImpactTotal sums the magnitudes of impacts of the given kinds.
func (e WorldEvent) ImpactTotal(kinds ...ImpactKind) float64 {
	total := 0.0
	for _, imp := range e.Impacts {
		if slices.Contains(kinds, imp.Kind) {
			total += imp.Magnitude
		}
	}
	return total
}

// ImpactMax returns the largest magnitude among impacts of the given kinds.
func (e WorldEvent) ImpactMax(kinds ...ImpactKind) float64 {
	m := 0.0
	for _, imp := range e.Impacts {
		if slices.Contains(kinds, imp.Kind) && imp.Magnitude > m {
			m = imp.Magnitude
		}
	}
	return m
}

// NormalizeTags returns tags deduplicated and sorted, dropping empties.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// RiskCategory groups events for risk aggregation. There is exactly one
// category per event type.
type RiskCategory string

// Risk categories.
const (
	RiskWeather        RiskCategory = "weather"
	RiskGeopolitical   RiskCategory = "geopolitical"
	RiskEconomic       RiskCategory = "economic"
	RiskEnvironmental  RiskCategory = "environmental"
	RiskHealth         RiskCategory = "health"
	RiskCyber          RiskCategory = "cyber"
	RiskSecurity       RiskCategory = "security"
	RiskLabor          RiskCategory = "labor"
	RiskInfrastructure RiskCategory = "infrastructure"
)

// CategoryFor maps an event type to its risk category.
func CategoryFor(t EventType) RiskCategory {
	switch t {
	case Weather:
		return RiskWeather
	case Political:
		return RiskGeopolitical
	case Economic:
		return RiskEconomic
	case NaturalDisaster:
		return RiskEnvironmental
	case Pandemic:
		return RiskHealth
	case CyberSecurity:
		return RiskCyber
	case Piracy:
		return RiskSecurity
	case LaborStrike:
		return RiskLabor
	case Infrastructure:
		return RiskInfrastructure
	default:
		return ""
	}
}

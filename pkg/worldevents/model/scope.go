package model

import (
	"math"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
)

// ScopeKind tags the variant held by a Scope.
type ScopeKind int

// Scope variants.
const (
	ScopeGlobal ScopeKind = iota
	ScopeRegional
	ScopeCountry
	ScopePort
	ScopeRoute
)

var scopeKindNames = []string{"global", "regional", "country", "port", "route"}

// String returns the variant name.
func (k ScopeKind) String() string {
	if k >= ScopeGlobal && k <= ScopeRoute {
		return scopeKindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k ScopeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ScopeKind) UnmarshalText(b []byte) error {
	return unmarshalName(scopeKindNames, "scope kind", b, k)
}

// Scope is the geographic footprint of an event. Only the fields belonging
// to Kind are meaningful; build values with the constructors below.
type Scope struct {
	Kind     ScopeKind   `json:"kind"`
	Center   *Coordinate `json:"center,omitempty"`
	RadiusNM float64     `json:"radius_nm,omitempty"`
	Country  string      `json:"country,omitempty"`
	PortID   string      `json:"port_id,omitempty"`
	RouteID  string      `json:"route_id,omitempty"`
}

// GlobalScope affects everything.
func GlobalScope() Scope { return Scope{Kind: ScopeGlobal} }

// RegionalScope is a circle of radiusNM nautical miles around center.
func RegionalScope(center Coordinate, radiusNM float64) Scope {
	return Scope{Kind: ScopeRegional, Center: &center, RadiusNM: radiusNM}
}

// CountryScope covers every port of a country.
func CountryScope(country string) Scope {
	return Scope{Kind: ScopeCountry, Country: country}
}

// PortScope covers a single port.
func PortScope(portID string) Scope { return Scope{Kind: ScopePort, PortID: portID} }

// RouteScope covers a single route.
func RouteScope(routeID string) Scope { return Scope{Kind: ScopeRoute, RouteID: routeID} }

// InRadius reports whether c lies inside a regional scope's circle. It is
// false for every other kind and for a regional scope without a center.
func (s Scope) InRadius(c Coordinate) bool {
	return s.Kind == ScopeRegional && s.Center != nil && DistanceNM(*s.Center, c) <= s.RadiusNM
}

// Validate checks that the fields required by Kind are present.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeGlobal:
		return nil
	case ScopeRegional:
		if s.Center == nil {
			return weerrors.Invalid("scope.center", "required for regional scope")
		}
		if !s.Center.Valid() {
			return weerrors.Invalid("scope.center", "coordinate out of range: %+v", *s.Center)
		}
		if !(s.RadiusNM > 0) || math.IsInf(s.RadiusNM, 0) {
			return weerrors.Invalid("scope.radius_nm", "must be positive, got %v", s.RadiusNM)
		}
	case ScopeCountry:
		if s.Country == "" {
			return weerrors.Invalid("scope.country", "required for country scope")
		}
	case ScopePort:
		if s.PortID == "" {
			return weerrors.Invalid("scope.port_id", "required for port scope")
		}
	case ScopeRoute:
		if s.RouteID == "" {
			return weerrors.Invalid("scope.route_id", "required for route scope")
		}
	default:
		return weerrors.Invalid("scope.kind", "unknown scope kind %d", int(s.Kind))
	}
	return nil
}

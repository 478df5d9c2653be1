package model

import "strings"

// Hazard is a bit set of environmental exposures of a port.
type Hazard uint8

// Port hazard flags.
const (
	HazardHurricane Hazard = 1 << iota
	HazardIce
	HazardFog
	HazardSeismic
	HazardChokepoint
)

var hazardNames = []struct {
	flag Hazard
	name string
}{
	{HazardHurricane, "hurricane"},
	{HazardIce, "ice"},
	{HazardFog, "fog"},
	{HazardSeismic, "seismic"},
	{HazardChokepoint, "chokepoint"},
}

// Has reports whether every flag in f is set.
func (h Hazard) Has(f Hazard) bool { return h&f == f }

// String joins the set flag names with "|".
func (h Hazard) String() string {
	var parts []string
	for _, n := range hazardNames {
		if h.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseHazard resolves a single flag name.
func ParseHazard(s string) (Hazard, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range hazardNames {
		if n.name == s {
			return n.flag, true
		}
	}
	return 0, false
}

// Port is a catalog port.
type Port struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Country  string     `json:"country"`
	Region   string     `json:"region,omitempty"`
	Position Coordinate `json:"position"`
	Hazards  Hazard     `json:"hazards,omitempty"`
}

// Route is an ordered sequence of catalog ports.
type Route struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	PortIDs  []string `json:"port_ids"`
	BaseCost float64  `json:"base_cost"`
}

// Catalog is the read-only port and route lookup the engine depends on.
// Implementations must be safe for concurrent use.
type Catalog interface {
	Ports() []Port
	Port(id string) (Port, bool)
	Routes() []Route
	Route(id string) (Route, bool)
}

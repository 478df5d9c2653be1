// Package catalog provides read-only port and route catalogs for the engine:
// a built-in default set and a YAML file loader.
package catalog

import (
	"fmt"
	"slices"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// Static is an immutable in-memory catalog. It is safe for concurrent use.
type Static struct {
	ports     []model.Port
	portIdx   map[string]int
	routes    []model.Route
	routeIdx  map[string]int
	byCountry map[string][]model.Port
}

// New validates ports and routes and builds a catalog over them.
// Port and route IDs must be unique, coordinates valid, and every route
// must reference known ports.
func New(ports []model.Port, routes []model.Route) (*Static, error) {
	c := &Static{
		ports:     slices.Clone(ports),
		portIdx:   make(map[string]int, len(ports)),
		routes:    make([]model.Route, 0, len(routes)),
		routeIdx:  make(map[string]int, len(routes)),
		byCountry: make(map[string][]model.Port),
	}

	for i, p := range c.ports {
		if p.ID == "" {
			return nil, weerrors.Invalid("ports", "entry %d has no id", i)
		}
		if _, dup := c.portIdx[p.ID]; dup {
			return nil, weerrors.Invalid("ports", "duplicate port id %q", p.ID)
		}
		if !p.Position.Valid() {
			return nil, weerrors.Invalid("ports", "port %q has invalid position %+v", p.ID, p.Position)
		}
		c.portIdx[p.ID] = i
		c.byCountry[p.Country] = append(c.byCountry[p.Country], p)
	}

	for i, r := range routes {
		if r.ID == "" {
			return nil, weerrors.Invalid("routes", "entry %d has no id", i)
		}
		if _, dup := c.routeIdx[r.ID]; dup {
			return nil, weerrors.Invalid("routes", "duplicate route id %q", r.ID)
		}
		for _, pid := range r.PortIDs {
			if _, ok := c.portIdx[pid]; !ok {
				return nil, weerrors.Invalid("routes", "route %q references unknown port %q", r.ID, pid)
			}
		}
		r.PortIDs = slices.Clone(r.PortIDs)
		c.routeIdx[r.ID] = len(c.routes)
		c.routes = append(c.routes, r)
	}

	return c, nil
}

// MustNew is New that panics on error. Used for the built-in catalog.
func MustNew(ports []model.Port, routes []model.Route) *Static {
	c, err := New(ports, routes)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Ports returns every port in declaration order.
func (c *Static) Ports() []model.Port {
	return slices.Clone(c.ports)
}

// Port looks up a port by ID.
func (c *Static) Port(id string) (model.Port, bool) {
	i, ok := c.portIdx[id]
	if !ok {
		return model.Port{}, false
	}
	return c.ports[i], true
}

// Routes returns every route in declaration order.
func (c *Static) Routes() []model.Route {
	out := make([]model.Route, len(c.routes))
	for i, r := range c.routes {
		r.PortIDs = slices.Clone(r.PortIDs)
		out[i] = r
	}
	return out
}

// Route looks up a route by ID.
func (c *Static) Route(id string) (model.Route, bool) {
	i, ok := c.routeIdx[id]
	if !ok {
		return model.Route{}, false
	}
	r := c.routes[i]
	r.PortIDs = slices.Clone(r.PortIDs)
	return r, true
}

// PortsInCountry returns the ports registered under country.
func (c *Static) PortsInCountry(country string) []model.Port {
	return slices.Clone(c.byCountry[country])
}

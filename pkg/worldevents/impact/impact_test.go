package impact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/worldevents/pkg/worldevents/catalog"
	"github.com/randalmurphal/worldevents/pkg/worldevents/impact"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// One degree of latitude is ~60.04 nm, so these ports sit 100 nm and 400 nm
// north of Origin.
var (
	origin = model.Port{ID: "ORI", Name: "Origin", Country: "AA", Position: model.Coordinate{Lat: 0, Lon: 0}}
	near   = model.Port{ID: "NEA", Name: "Near", Country: "AA", Position: model.Coordinate{Lat: 100 / 60.04, Lon: 0}}
	far    = model.Port{ID: "FAR", Name: "Far", Country: "BB", Position: model.Coordinate{Lat: 400 / 60.04, Lon: 0}}
	remote = model.Port{ID: "REM", Name: "Remote", Country: "CC", Position: model.Coordinate{Lat: -40, Lon: 120}}
)

func testCatalog(t *testing.T) model.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]model.Port{origin, near, far, remote},
		[]model.Route{
			{ID: "north", PortIDs: []string{"ORI", "NEA", "FAR"}, BaseCost: 1000},
			{ID: "short", PortIDs: []string{"FAR", "REM"}, BaseCost: 500},
			{ID: "island", PortIDs: []string{"REM"}, BaseCost: 100},
		},
	)
	require.NoError(t, err)
	return c
}

func event(id string, scope model.Scope, impacts ...model.Impact) model.WorldEvent {
	return model.WorldEvent{ID: id, Type: model.Weather, Severity: model.Medium, Scope: scope, Impacts: impacts}
}

func imp(k model.ImpactKind, m float64) model.Impact {
	return model.Impact{Kind: k, Magnitude: m}
}

func TestPortImpacts_RegionalRadius(t *testing.T) {
	r := impact.NewResolver(testCatalog(t))
	storm := event("storm", model.RegionalScope(origin.Position, 300), imp(model.ImpactDelayIncrease, 30))

	got := r.PortImpacts([]model.WorldEvent{storm}, near)
	require.Len(t, got, 1)
	assert.GreaterOrEqual(t, got[0].Level, impact.LevelLow)
	assert.Equal(t, 30.0, got[0].Delays)

	assert.Empty(t, r.PortImpacts([]model.WorldEvent{storm}, far))
}

func TestAssessPort(t *testing.T) {
	r := impact.NewResolver(testCatalog(t))

	tests := []struct {
		name     string
		events   []model.WorldEvent
		level    impact.Level
		capacity float64
		delays   float64
	}{
		{
			name:     "no events",
			level:    impact.LevelNone,
			capacity: 100,
		},
		{
			name: "closure and reduction take the max",
			events: []model.WorldEvent{event("e", model.PortScope("ORI"),
				imp(model.ImpactPortClosure, 80), imp(model.ImpactCapacityReduction, 20))},
			level:    impact.LevelHigh,
			capacity: 20,
		},
		{
			name: "critical below twenty",
			events: []model.WorldEvent{event("e", model.GlobalScope(),
				imp(model.ImpactPortClosure, 100))},
			level:    impact.LevelCritical,
			capacity: 0,
		},
		{
			name: "delays sum across events",
			events: []model.WorldEvent{
				event("a", model.CountryScope("AA"), imp(model.ImpactDelayIncrease, 30)),
				event("b", model.GlobalScope(), imp(model.ImpactDelayIncrease, 25)),
			},
			level:    impact.LevelMedium,
			capacity: 100,
			delays:   55,
		},
		{
			name: "small reduction is low",
			events: []model.WorldEvent{event("e", model.PortScope("ORI"),
				imp(model.ImpactCapacityReduction, 5))},
			level:    impact.LevelLow,
			capacity: 95,
		},
		{
			name: "moderate capacity loss",
			events: []model.WorldEvent{event("e", model.PortScope("ORI"),
				imp(model.ImpactCapacityReduction, 30))},
			level:    impact.LevelMedium,
			capacity: 70,
		},
		{
			name: "events elsewhere ignored",
			events: []model.WorldEvent{
				event("e", model.PortScope("FAR"), imp(model.ImpactPortClosure, 100)),
				event("f", model.CountryScope("ZZ"), imp(model.ImpactPortClosure, 100)),
			},
			level:    impact.LevelNone,
			capacity: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := r.AssessPort(tt.events, origin)
			assert.Equal(t, tt.level, a.Level)
			assert.Equal(t, tt.capacity, a.Capacity)
			assert.Equal(t, tt.delays, a.Delays)
			assert.Equal(t, "ORI", a.PortID)
		})
	}
}

func TestRouteImpacts(t *testing.T) {
	cat := testCatalog(t)
	r := impact.NewResolver(cat)
	north, _ := cat.Route("north")
	short, _ := cat.Route("short")

	blockage := event("blk", model.PortScope("NEA"),
		imp(model.ImpactDelayIncrease, 60), imp(model.ImpactCostIncrease, 30), imp(model.ImpactRouteDisruption, 20),
		imp(model.ImpactPortClosure, 90))

	got := r.RouteImpacts([]model.WorldEvent{blockage}, north)
	require.Len(t, got, 1)
	ri := got[0]
	assert.Equal(t, "north", ri.RouteID)
	assert.Equal(t, 110.0, ri.TotalImpact)
	assert.Equal(t, impact.LevelHigh, ri.Level)
	assert.Equal(t, 60.0, ri.EstimatedDelay)
	assert.Equal(t, 300.0, ri.AdditionalCost)
	assert.True(t, ri.AlternativesAvailable)

	assert.Empty(t, r.RouteImpacts([]model.WorldEvent{blockage}, short))

	recession := event("rec", model.GlobalScope(), imp(model.ImpactCostIncrease, 5))
	got = r.RouteImpacts([]model.WorldEvent{recession}, north)
	require.Len(t, got, 1)
	assert.Equal(t, impact.LevelNone, got[0].Level)
	assert.False(t, got[0].AlternativesAvailable, "global events leave no alternatives")

	got = r.RouteImpacts([]model.WorldEvent{event("x", model.CountryScope("CC"), imp(model.ImpactDelayIncrease, 20))}, short)
	require.Len(t, got, 1)
	assert.False(t, got[0].AlternativesAvailable, "two-port routes have no alternatives")
	assert.Equal(t, impact.LevelLow, got[0].Level)
}

func TestRouteImpacts_Levels(t *testing.T) {
	cat := testCatalog(t)
	r := impact.NewResolver(cat)
	north, _ := cat.Route("north")

	tests := []struct {
		delay float64
		want  impact.Level
	}{
		{10, impact.LevelNone},
		{11, impact.LevelLow},
		{51, impact.LevelMedium},
		{101, impact.LevelHigh},
		{201, impact.LevelCritical},
	}
	for _, tt := range tests {
		ev := event("e", model.GlobalScope(), imp(model.ImpactDelayIncrease, tt.delay))
		got := r.RouteImpacts([]model.WorldEvent{ev}, north)
		require.Len(t, got, 1)
		assert.Equal(t, tt.want, got[0].Level, "delay %v", tt.delay)
	}
}

func TestRouteScopeIntersection(t *testing.T) {
	cat := testCatalog(t)
	r := impact.NewResolver(cat)
	north, _ := cat.Route("north")
	island, _ := cat.Route("island")

	onShort := event("s", model.RouteScope("short"), imp(model.ImpactDelayIncrease, 20))
	assert.Len(t, r.RouteImpacts([]model.WorldEvent{onShort}, north), 1, "shares FAR")
	assert.Len(t, r.RouteImpacts([]model.WorldEvent{onShort}, island), 1, "shares REM")

	assert.Len(t, r.PortImpacts([]model.WorldEvent{onShort}, far), 1)
	assert.Empty(t, r.PortImpacts([]model.WorldEvent{onShort}, origin))

	ghost := event("g", model.RouteScope("ghost"), imp(model.ImpactDelayIncrease, 20))
	assert.Empty(t, r.RouteImpacts([]model.WorldEvent{ghost}, north))
	assert.Empty(t, r.PortImpacts([]model.WorldEvent{ghost}, origin))

	unknownPort := event("u", model.PortScope("NOPE"), imp(model.ImpactDelayIncrease, 20))
	assert.Empty(t, r.RouteImpacts([]model.WorldEvent{unknownPort}, north))
}

func TestEventsInArea(t *testing.T) {
	r := impact.NewResolver(testCatalog(t))
	box := model.Bounds{MinLat: -1, MaxLat: 2, MinLon: -1, MaxLon: 1}

	events := []model.WorldEvent{
		event("global", model.GlobalScope()),
		event("regional-in", model.RegionalScope(model.Coordinate{Lat: 5, Lon: 0}, 200)),
		event("regional-out", model.RegionalScope(model.Coordinate{Lat: 30, Lon: 30}, 100)),
		event("country-in", model.CountryScope("AA")),
		event("country-out", model.CountryScope("CC")),
		event("port-in", model.PortScope("NEA")),
		event("port-out", model.PortScope("FAR")),
		event("port-unknown", model.PortScope("NOPE")),
		event("route-in", model.RouteScope("north")),
		event("route-out", model.RouteScope("island")),
	}

	var ids []string
	for _, ev := range r.EventsInArea(events, box) {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"global", "regional-in", "country-in", "port-in", "route-in"}, ids)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "critical", impact.LevelCritical.String())
	assert.Equal(t, "none", impact.LevelNone.String())
	b, err := impact.LevelHigh.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "high", string(b))
}

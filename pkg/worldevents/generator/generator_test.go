package generator

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/worldevents/pkg/worldevents/catalog"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// scriptedSource replays fixed draws in order.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) IntN(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func singlePortCatalog(t *testing.T, p model.Port) model.Catalog {
	t.Helper()
	c, err := catalog.New([]model.Port{p}, nil)
	require.NoError(t, err)
	return c
}

func TestGenerate_ProbabilityGate(t *testing.T) {
	g := New(catalog.Default(), NewSource(1), WithProbabilities(map[model.EventType]float64{
		model.Weather: 0,
	}))

	for range 1000 {
		_, ok := g.Generate(model.Weather, now)
		require.False(t, ok)
	}
	assert.Equal(t, DefaultProbabilities[model.Political], g.Probability(model.Political))
}

func TestGenerate_ScriptedStorm(t *testing.T) {
	cat := singlePortCatalog(t, model.Port{
		ID: "P1", Name: "Alpha", Country: "AA",
		Position: model.Coordinate{Lat: 60, Lon: 10},
	})
	src := &scriptedSource{
		// gate, severity (0.9*8 = 7.2 -> High), duration midpoint
		floats: []float64{0.0, 0.9, 0.5},
		// rule index (storm, ice eligible), port index
		ints: []int{0, 0},
	}
	g := New(cat, src, WithIDFunc(func() string { return "fixed-id" }))

	ev, ok := g.Generate(model.Weather, now)
	require.True(t, ok)

	assert.Equal(t, "fixed-id", ev.ID)
	assert.Equal(t, model.Weather, ev.Type)
	assert.Equal(t, model.High, ev.Severity)
	assert.Equal(t, model.StatusActive, ev.Status)
	assert.Equal(t, model.RegionalScope(model.Coordinate{Lat: 60, Lon: 10}, 400), ev.Scope)
	assert.Equal(t, "Storm near Alpha", ev.Title)
	assert.Equal(t, now, ev.StartTime)
	require.NotNil(t, ev.EstimatedEndTime)
	assert.Equal(t, now.Add(60*time.Hour), *ev.EstimatedEndTime)
	assert.Equal(t, []model.Impact{
		{Kind: model.ImpactSpeedReduction, Magnitude: 40},
		{Kind: model.ImpactDelayIncrease, Magnitude: 60},
	}, ev.Impacts)
	assert.Equal(t, []string{"high", "storm", "weather"}, ev.Tags)
}

func TestGenerate_CapsClosureAndCapacity(t *testing.T) {
	cat := singlePortCatalog(t, model.Port{
		ID: "P1", Name: "Quake", Country: "JP",
		Position: model.Coordinate{Lat: 35, Lon: 139}, Hazards: model.HazardSeismic,
	})
	src := &scriptedSource{
		// gate, severity 0.99*9 -> Critical, duration
		floats: []float64{0.0, 0.99, 0.0},
		// tsunami is the second eligible rule
		ints: []int{1, 0},
	}
	g := New(cat, src)

	ev, ok := g.Generate(model.NaturalDisaster, now)
	require.True(t, ok)
	assert.Contains(t, ev.Tags, "tsunami")
	assert.Equal(t, model.Critical, ev.Severity)
	assert.Equal(t, 100.0, ev.ImpactMax(model.ImpactPortClosure))
	assert.Equal(t, 120.0, ev.ImpactMax(model.ImpactInfrastructureDamage))
	assert.Equal(t, model.RegionalScope(model.Coordinate{Lat: 35, Lon: 139}, 500), ev.Scope)
}

func TestGenerate_NoEligiblePorts(t *testing.T) {
	cat := singlePortCatalog(t, model.Port{
		ID: "P1", Country: "AA", Region: "North Sea",
		Position: model.Coordinate{Lat: 52, Lon: 4},
	})
	g := New(cat, NewSource(3), WithProbabilities(map[model.EventType]float64{model.Piracy: 1}))

	_, ok := g.Generate(model.Piracy, now)
	assert.False(t, ok)

	empty, err := catalog.New(nil, nil)
	require.NoError(t, err)
	g = New(empty, NewSource(3), WithProbabilities(map[model.EventType]float64{model.Weather: 1}))
	_, ok = g.Generate(model.Weather, now)
	assert.False(t, ok)

	_, ok = g.Generate(model.EventType(77), now)
	assert.False(t, ok)
}

func TestGenerate_GlobalTag(t *testing.T) {
	always := map[model.EventType]float64{model.Pandemic: 1}
	g := New(catalog.Default(), NewSource(11), WithProbabilities(always))

	ev, ok := g.Generate(model.Pandemic, now)
	require.True(t, ok)
	assert.Equal(t, model.ScopeGlobal, ev.Scope.Kind)
	assert.Contains(t, ev.Tags, "global")
	assert.Contains(t, ev.Tags, "pandemic")
	assert.Equal(t, "Pandemic outbreak", ev.Title)
}

func TestGenerate_Invariants(t *testing.T) {
	always := make(map[model.EventType]float64)
	for _, et := range model.EventTypes {
		always[et] = 1
	}
	g := New(catalog.Default(), NewSource(42), WithProbabilities(always))

	seenIDs := map[string]bool{}
	for _, et := range model.EventTypes {
		for range 200 {
			ev, ok := g.Generate(et, now)
			require.True(t, ok, "type %s", et)

			assert.Equal(t, et, ev.Type)
			assert.True(t, ev.Severity.Valid())
			require.NotNil(t, ev.EstimatedEndTime)
			assert.False(t, ev.EstimatedEndTime.Before(ev.StartTime))
			assert.NotEmpty(t, ev.Impacts)
			assert.NoError(t, ev.Scope.Validate())
			assert.NotEqual(t, model.ScopeRoute, ev.Scope.Kind)
			assert.True(t, slices.IsSorted(ev.Tags))
			assert.LessOrEqual(t, ev.ImpactMax(model.ImpactPortClosure, model.ImpactCapacityReduction), 100.0)

			assert.False(t, seenIDs[ev.ID], "duplicate id")
			seenIDs[ev.ID] = true
		}
	}
}

func TestGenerate_HurricaneNeverLow(t *testing.T) {
	cat := singlePortCatalog(t, model.Port{
		ID: "P1", Name: "Tropic", Country: "AA",
		Position: model.Coordinate{Lat: 10, Lon: 10},
	})
	src := NewSource(5)
	g := New(cat, src, WithProbabilities(map[model.EventType]float64{model.Weather: 1}))

	for range 500 {
		ev, ok := g.Generate(model.Weather, now)
		require.True(t, ok)
		if slices.Contains(ev.Tags, "hurricane") {
			assert.NotEqual(t, model.Low, ev.Severity)
		}
		if slices.Contains(ev.Tags, "storm") {
			assert.NotEqual(t, model.Critical, ev.Severity)
		}
	}
}

func TestSource_Deterministic(t *testing.T) {
	a, b := NewSource(99), NewSource(99)
	for range 20 {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

package generator

import (
	"math"
	"time"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

const (
	hour = time.Hour
	day  = 24 * time.Hour
)

// DefaultProbabilities is the per-tick chance that a type produces an event.
var DefaultProbabilities = map[model.EventType]float64{
	model.Weather:         0.001,
	model.Political:       0.0005,
	model.Economic:        0.0003,
	model.NaturalDisaster: 0.0001,
	model.Pandemic:        0.00001,
	model.CyberSecurity:   0.0002,
	model.Piracy:          0.0001,
	model.LaborStrike:     0.0002,
	model.Infrastructure:  0.0001,
}

// Ports whose Region is one of these qualify for piracy surges.
var piracyRegions = map[string]bool{
	"Gulf of Aden":      true,
	"Horn of Africa":    true,
	"Strait of Malacca": true,
	"Gulf of Guinea":    true,
	"Sulu Sea":          true,
}

type scopeFunc func(p model.Port, sev model.Severity, radius [4]float64) model.Scope

func regionalBySeverity(p model.Port, sev model.Severity, radius [4]float64) model.Scope {
	return model.RegionalScope(p.Position, radius[sev])
}

func regionalFixed(nm float64) scopeFunc {
	return func(p model.Port, _ model.Severity, _ [4]float64) model.Scope {
		return model.RegionalScope(p.Position, nm)
	}
}

func countryOf(p model.Port, _ model.Severity, _ [4]float64) model.Scope {
	return model.CountryScope(p.Country)
}

func portOnly(p model.Port, _ model.Severity, _ [4]float64) model.Scope {
	return model.PortScope(p.ID)
}

func global(model.Port, model.Severity, [4]float64) model.Scope {
	return model.GlobalScope()
}

func anyPort(model.Port) bool { return true }

func hasHazard(h model.Hazard) func(model.Port) bool {
	return func(p model.Port) bool { return p.Hazards.Has(h) }
}

// rule is one sub-kind of an event type.
type rule struct {
	key      string
	title    string
	eligible func(model.Port) bool
	weights  [4]float64
	scope    scopeFunc
	impacts  []model.Impact
}

// profile holds everything shared by the rules of one event type.
type profile struct {
	rules       []rule
	radius      [4]float64
	duration    [4][2]float64
	unit        time.Duration
	multipliers [4]float64
}

var (
	standardMultipliers = [4]float64{0.5, 1.0, 2.0, 3.0}
	commonWeights       = [4]float64{3, 4, 2, 1}
	shortDurations      = [4][2]float64{{1, 3}, {2, 7}, {5, 14}, {10, 30}}
)

func imp(kind model.ImpactKind, magnitude float64) model.Impact {
	return model.Impact{Kind: kind, Magnitude: magnitude}
}

var profiles = map[model.EventType]profile{
	model.Weather: {
		radius:      [4]float64{150, 250, 400, 600},
		duration:    [4][2]float64{{6, 24}, {12, 48}, {24, 96}, {48, 168}},
		unit:        hour,
		multipliers: standardMultipliers,
		rules: []rule{
			{
				key: "storm", title: "Storm", eligible: anyPort,
				weights: [4]float64{4, 3, 1, 0}, scope: regionalBySeverity,
				impacts: []model.Impact{imp(model.ImpactSpeedReduction, 20), imp(model.ImpactDelayIncrease, 30)},
			},
			{
				key: "hurricane", title: "Hurricane",
				eligible: func(p model.Port) bool {
					return math.Abs(p.Position.Lat) < 35 || p.Hazards.Has(model.HazardHurricane)
				},
				weights: [4]float64{0, 1, 3, 2}, scope: regionalBySeverity,
				impacts: []model.Impact{
					imp(model.ImpactPortClosure, 40), imp(model.ImpactRouteDisruption, 30),
					imp(model.ImpactDelayIncrease, 50), imp(model.ImpactCostIncrease, 15),
				},
			},
			{
				key: "fog", title: "Dense fog", eligible: hasHazard(model.HazardFog),
				weights: [4]float64{6, 3, 1, 0}, scope: portOnly,
				impacts: []model.Impact{
					imp(model.ImpactSpeedReduction, 15), imp(model.ImpactDelayIncrease, 20),
					imp(model.ImpactNavigationDisruption, 25),
				},
			},
			{
				key: "ice", title: "Sea ice",
				eligible: func(p model.Port) bool {
					return math.Abs(p.Position.Lat) > 50 || p.Hazards.Has(model.HazardIce)
				},
				weights: [4]float64{2, 3, 2, 1}, scope: regionalFixed(200),
				impacts: []model.Impact{
					imp(model.ImpactSpeedReduction, 25), imp(model.ImpactCapacityReduction, 20),
					imp(model.ImpactDelayIncrease, 25),
				},
			},
		},
	},
	model.Political: {
		duration:    [4][2]float64{{3, 14}, {7, 30}, {14, 90}, {30, 180}},
		unit:        day,
		multipliers: [4]float64{0.5, 1.0, 1.5, 2.5},
		rules: []rule{
			{
				key: "sanctions", title: "Sanctions", eligible: anyPort,
				weights: [4]float64{4, 3, 2, 1}, scope: countryOf,
				impacts: []model.Impact{imp(model.ImpactCostIncrease, 25), imp(model.ImpactDemandReduction, 20)},
			},
			{
				key: "civil_unrest", title: "Civil unrest", eligible: anyPort,
				weights: [4]float64{4, 3, 2, 1}, scope: countryOf,
				impacts: []model.Impact{
					imp(model.ImpactPortClosure, 20), imp(model.ImpactCapacityReduction, 15),
					imp(model.ImpactDelayIncrease, 30),
				},
			},
			{
				key: "border_closure", title: "Border closure", eligible: anyPort,
				weights: [4]float64{4, 3, 2, 1}, scope: countryOf,
				impacts: []model.Impact{imp(model.ImpactRouteDisruption, 40), imp(model.ImpactDelayIncrease, 40)},
			},
		},
	},
	model.Economic: {
		duration:    [4][2]float64{{14, 60}, {30, 120}, {60, 240}, {120, 365}},
		unit:        day,
		multipliers: [4]float64{0.5, 1.0, 1.5, 2.0},
		rules: []rule{
			{
				key: "recession", title: "Recession", eligible: anyPort,
				weights: commonWeights, scope: global,
				impacts: []model.Impact{imp(model.ImpactDemandReduction, 20), imp(model.ImpactPriceVolatility, 15)},
			},
			{
				key: "fuel_spike", title: "Fuel price spike", eligible: anyPort,
				weights: commonWeights, scope: global,
				impacts: []model.Impact{imp(model.ImpactCostIncrease, 25), imp(model.ImpactPriceVolatility, 20)},
			},
			{
				key: "currency_crisis", title: "Currency crisis", eligible: anyPort,
				weights: commonWeights, scope: countryOf,
				impacts: []model.Impact{imp(model.ImpactPriceVolatility, 30), imp(model.ImpactCostIncrease, 10)},
			},
		},
	},
	model.NaturalDisaster: {
		radius:      [4]float64{100, 200, 350, 500},
		duration:    [4][2]float64{{2, 7}, {5, 21}, {14, 60}, {30, 120}},
		unit:        day,
		multipliers: standardMultipliers,
		rules: []rule{
			{
				key: "earthquake", title: "Earthquake", eligible: hasHazard(model.HazardSeismic),
				weights: [4]float64{2, 3, 3, 2}, scope: regionalBySeverity,
				impacts: []model.Impact{
					imp(model.ImpactInfrastructureDamage, 30), imp(model.ImpactPortClosure, 30),
					imp(model.ImpactCapacityReduction, 25),
				},
			},
			{
				key: "tsunami", title: "Tsunami", eligible: hasHazard(model.HazardSeismic),
				weights: [4]float64{1, 2, 3, 3}, scope: regionalBySeverity,
				impacts: []model.Impact{imp(model.ImpactPortClosure, 50), imp(model.ImpactInfrastructureDamage, 40)},
			},
			{
				key: "flood", title: "Flood", eligible: anyPort,
				weights: [4]float64{3, 3, 2, 1}, scope: regionalBySeverity,
				impacts: []model.Impact{imp(model.ImpactCapacityReduction, 25), imp(model.ImpactDelayIncrease, 30)},
			},
		},
	},
	model.Pandemic: {
		duration:    [4][2]float64{{30, 90}, {60, 180}, {120, 365}, {180, 730}},
		unit:        day,
		multipliers: standardMultipliers,
		rules: []rule{
			{
				key: "outbreak", title: "Pandemic outbreak", eligible: anyPort,
				weights: commonWeights, scope: global,
				impacts: []model.Impact{
					imp(model.ImpactCapacityReduction, 15), imp(model.ImpactDelayIncrease, 25),
					imp(model.ImpactDemandReduction, 15), imp(model.ImpactCostIncrease, 10),
				},
			},
		},
	},
	model.CyberSecurity: {
		duration:    [4][2]float64{{2, 12}, {6, 48}, {24, 96}, {48, 240}},
		unit:        hour,
		multipliers: standardMultipliers,
		rules: []rule{
			{
				key: "ransomware", title: "Ransomware attack", eligible: anyPort,
				weights: commonWeights, scope: portOnly,
				impacts: []model.Impact{
					imp(model.ImpactCommunicationDisruption, 40), imp(model.ImpactDelayIncrease, 30),
					imp(model.ImpactCapacityReduction, 20),
				},
			},
			{
				key: "terminal_outage", title: "Terminal system outage", eligible: anyPort,
				weights: commonWeights, scope: portOnly,
				impacts: []model.Impact{imp(model.ImpactCommunicationDisruption, 30), imp(model.ImpactDelayIncrease, 20)},
			},
			{
				key: "gps_jamming", title: "GPS jamming", eligible: hasHazard(model.HazardChokepoint),
				weights: commonWeights, scope: regionalFixed(150),
				impacts: []model.Impact{imp(model.ImpactNavigationDisruption, 40), imp(model.ImpactSpeedReduction, 15)},
			},
		},
	},
	model.Piracy: {
		radius:      [4]float64{200, 300, 400, 500},
		duration:    [4][2]float64{{3, 10}, {7, 21}, {14, 45}, {30, 90}},
		unit:        day,
		multipliers: [4]float64{0.5, 1.0, 1.5, 2.0},
		rules: []rule{
			{
				key: "piracy_surge", title: "Piracy surge",
				eligible: func(p model.Port) bool { return piracyRegions[p.Region] },
				weights:  commonWeights, scope: regionalBySeverity,
				impacts: []model.Impact{
					imp(model.ImpactRouteDisruption, 20), imp(model.ImpactCostIncrease, 20),
					imp(model.ImpactDelayIncrease, 15),
				},
			},
		},
	},
	model.LaborStrike: {
		duration:    shortDurations,
		unit:        day,
		multipliers: standardMultipliers,
		rules: []rule{
			{
				key: "dock_strike", title: "Dock workers strike", eligible: anyPort,
				weights: commonWeights, scope: portOnly,
				impacts: []model.Impact{
					imp(model.ImpactPortClosure, 30), imp(model.ImpactCapacityReduction, 30),
					imp(model.ImpactDelayIncrease, 40),
				},
			},
		},
	},
	model.Infrastructure: {
		duration:    shortDurations,
		unit:        day,
		multipliers: standardMultipliers,
		rules: []rule{
			{
				key: "crane_failure", title: "Crane failure", eligible: anyPort,
				weights: commonWeights, scope: portOnly,
				impacts: []model.Impact{imp(model.ImpactCapacityReduction, 25), imp(model.ImpactDelayIncrease, 20)},
			},
			{
				key: "power_outage", title: "Power outage", eligible: anyPort,
				weights: commonWeights, scope: portOnly,
				impacts: []model.Impact{imp(model.ImpactCapacityReduction, 35), imp(model.ImpactCommunicationDisruption, 20)},
			},
			{
				key: "channel_blockage", title: "Channel blockage", eligible: hasHazard(model.HazardChokepoint),
				weights: [4]float64{2, 3, 3, 2}, scope: regionalFixed(100),
				impacts: []model.Impact{
					imp(model.ImpactRouteDisruption, 50), imp(model.ImpactDelayIncrease, 60),
					imp(model.ImpactCostIncrease, 20),
				},
			},
		},
	},
}

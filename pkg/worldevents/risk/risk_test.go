package risk_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/risk"
)

var now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func ev(t model.EventType, s model.Severity, scope model.Scope) model.WorldEvent {
	return model.WorldEvent{Type: t, Severity: s, Scope: scope}
}

func TestScore_Monotonic(t *testing.T) {
	scopes := []model.Scope{
		model.GlobalScope(),
		model.RegionalScope(model.Coordinate{}, 100),
		model.CountryScope("AA"),
		model.RouteScope("r"),
		model.PortScope("p"),
	}

	for _, scope := range scopes {
		prev := 0.0
		for _, sev := range model.Severities {
			s := risk.Score(ev(model.Weather, sev, scope))
			assert.Greater(t, s, prev, "severity %s scope %s", sev, scope.Kind)
			prev = s
		}
	}

	for _, sev := range model.Severities {
		for i := 1; i < len(scopes); i++ {
			wider := risk.Score(ev(model.Weather, sev, scopes[i-1]))
			narrower := risk.Score(ev(model.Weather, sev, scopes[i]))
			assert.Greater(t, wider, narrower)
		}
	}

	assert.Equal(t, 200.0, risk.Score(ev(model.Pandemic, model.Critical, model.GlobalScope())))
	assert.Equal(t, 20.0, risk.Score(ev(model.LaborStrike, model.Low, model.PortScope("p"))))
}

func TestAssess_Empty(t *testing.T) {
	a := risk.NewAssessor().Assess(nil, nil, now)
	assert.Zero(t, a.OverallRisk)
	assert.Empty(t, a.Categories)
	assert.Empty(t, a.HighestCategory)
	assert.Equal(t, risk.TrendStable, a.Trend)
	assert.Equal(t, now, a.AssessedAt)
}

func TestAssess_MaxPerCategoryThenMean(t *testing.T) {
	active := []model.WorldEvent{
		ev(model.Weather, model.Low, model.PortScope("p")),                        // 20
		ev(model.Weather, model.High, model.RegionalScope(model.Coordinate{}, 1)), // 112.5
		ev(model.Political, model.Medium, model.CountryScope("AA")),               // 60
	}

	a := risk.NewAssessor().Assess(active, nil, now)
	assert.Equal(t, 112.5, a.Categories[model.RiskWeather])
	assert.Equal(t, 60.0, a.Categories[model.RiskGeopolitical])
	assert.Len(t, a.Categories, 2)
	assert.InDelta(t, (112.5+60)/2, a.OverallRisk, 1e-9)
	assert.Equal(t, model.RiskWeather, a.HighestCategory)
	assert.Equal(t, 3, a.ActiveEventCount)
}

func TestAssess_Trend(t *testing.T) {
	low := ev(model.Weather, model.Low, model.PortScope("p"))                            // 20
	high := ev(model.Weather, model.Critical, model.GlobalScope())                       // 200
	regional := ev(model.Weather, model.Low, model.RegionalScope(model.Coordinate{}, 1)) // 37.5
	medPort := ev(model.Weather, model.Medium, model.PortScope("p"))                     // 40

	repeat := func(e model.WorldEvent, n int) []model.WorldEvent {
		out := make([]model.WorldEvent, n)
		for i := range out {
			out[i] = e
		}
		return out
	}

	tests := []struct {
		name    string
		history []model.WorldEvent
		want    risk.Trend
	}{
		{"too short", repeat(high, 9), risk.TrendStable},
		{"rising", append(repeat(low, 5), repeat(high, 5)...), risk.TrendIncreasing},
		{"falling", append(repeat(high, 5), repeat(low, 5)...), risk.TrendDecreasing},
		{"flat", repeat(low, 10), risk.TrendStable},
		{"within band", append(repeat(regional, 5), repeat(medPort, 5)...), risk.TrendStable},
		{"only last ten count", append(repeat(high, 20), append(repeat(low, 5), repeat(high, 5)...)...), risk.TrendIncreasing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := risk.NewAssessor().Assess(nil, tt.history, now)
			assert.Equal(t, tt.want, a.Trend)
		})
	}
}

func TestTrendString(t *testing.T) {
	assert.Equal(t, "increasing", risk.TrendIncreasing.String())
	b, _ := risk.TrendDecreasing.MarshalText()
	assert.Equal(t, "decreasing", string(b))
}

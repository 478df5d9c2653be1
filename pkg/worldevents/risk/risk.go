// Package risk scores active events and summarises them into a global risk
// assessment with a trend derived from resolution history.
package risk

import (
	"time"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// Trend is the direction of recent risk.
type Trend int

// Trend values.
const (
	TrendStable Trend = iota
	TrendIncreasing
	TrendDecreasing
)

var trendNames = []string{"stable", "increasing", "decreasing"}

// String returns the trend name.
func (t Trend) String() string {
	if t >= TrendStable && t <= TrendDecreasing {
		return trendNames[t]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t Trend) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Assessment is a point-in-time risk summary.
type Assessment struct {
	OverallRisk      float64                        `json:"overall_risk"`
	Categories       map[model.RiskCategory]float64 `json:"categories"`
	HighestCategory  model.RiskCategory             `json:"highest_category,omitempty"`
	ActiveEventCount int                            `json:"active_event_count"`
	Trend            Trend                          `json:"trend"`
	AssessedAt       time.Time                      `json:"assessed_at"`
}

var severityScores = [...]float64{
	model.Low:      25,
	model.Medium:   50,
	model.High:     75,
	model.Critical: 100,
}

// ScopeMultiplier weights a score by how widely the event reaches.
func ScopeMultiplier(k model.ScopeKind) float64 {
	switch k {
	case model.ScopeGlobal:
		return 2.0
	case model.ScopeRegional:
		return 1.5
	case model.ScopeCountry:
		return 1.2
	case model.ScopeRoute:
		return 1.0
	case model.ScopePort:
		return 0.8
	default:
		return 0
	}
}

// Score is severityScore x scopeMultiplier for one event.
func Score(ev model.WorldEvent) float64 {
	if !ev.Severity.Valid() {
		return 0
	}
	return severityScores[ev.Severity] * ScopeMultiplier(ev.Scope.Kind)
}

// trendWindow is the number of history entries in each half of the
// trend comparison.
const trendWindow = 5

// Assessor computes assessments. The zero value is ready to use.
type Assessor struct{}

// NewAssessor returns an Assessor.
func NewAssessor() *Assessor { return &Assessor{} }

// Assess keeps the maximum score per category, averages the non-empty
// categories into OverallRisk and compares the last two windows of history.
func (a *Assessor) Assess(active, history []model.WorldEvent, now time.Time) Assessment {
	cats := make(map[model.RiskCategory]float64)
	for _, ev := range active {
		c := model.CategoryFor(ev.Type)
		if c == "" {
			continue
		}
		if s := Score(ev); s >= cats[c] {
			cats[c] = s
		}
	}

	out := Assessment{
		Categories:       cats,
		ActiveEventCount: len(active),
		Trend:            trend(history),
		AssessedAt:       now,
	}
	if len(cats) == 0 {
		return out
	}

	sum := 0.0
	best := -1.0
	for c, s := range cats {
		sum += s
		if s > best || (s == best && c < out.HighestCategory) {
			best = s
			out.HighestCategory = c
		}
	}
	out.OverallRisk = sum / float64(len(cats))
	return out
}

func trend(history []model.WorldEvent) Trend {
	if len(history) < 2*trendWindow {
		return TrendStable
	}
	recent := history[len(history)-trendWindow:]
	prior := history[len(history)-2*trendWindow : len(history)-trendWindow]

	var recentSum, priorSum float64
	for _, ev := range recent {
		recentSum += Score(ev)
	}
	for _, ev := range prior {
		priorSum += Score(ev)
	}
	if priorSum == 0 {
		if recentSum > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}

	switch ratio := recentSum / priorSum; {
	case ratio > 1.2:
		return TrendIncreasing
	case ratio < 0.8:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

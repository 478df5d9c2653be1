package forecast

import (
	"context"
	"slices"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// NoiseProvider is a baseline provider that derives a smooth, repeatable
// probability per catalog region and day from OpenSimplex noise. It stands
// in for a real predictor when none is plugged in.
type NoiseProvider struct {
	name    string
	typ     model.EventType
	regions []string
	noise   opensimplex.Noise
	// scale keeps rare event types at low probabilities.
	scale float64
}

// Noise sampling steps. Neighbouring days stay correlated, regions do not.
const (
	regionStep = 1.7
	dayStep    = 0.15
)

// NewNoiseProvider builds a provider predicting events of type t in every
// region of catalog. Ports without a region contribute their country.
func NewNoiseProvider(name string, t model.EventType, catalog model.Catalog, seed int64, scale float64) *NoiseProvider {
	seen := make(map[string]bool)
	var regions []string
	for _, p := range catalog.Ports() {
		r := p.Region
		if r == "" {
			r = p.Country
		}
		if r != "" && !seen[r] {
			seen[r] = true
			regions = append(regions, r)
		}
	}
	slices.Sort(regions)

	return &NoiseProvider{
		name:    name,
		typ:     t,
		regions: regions,
		noise:   opensimplex.NewNormalized(seed + int64(t)),
		scale:   clamp(scale),
	}
}

// NoiseProviders returns the four baseline providers the engine expects:
// weather, political, economic and natural disaster.
func NoiseProviders(catalog model.Catalog, seed int64) []Provider {
	return []Provider{
		NewNoiseProvider("weather", model.Weather, catalog, seed, 0.9),
		NewNoiseProvider("political", model.Political, catalog, seed, 0.6),
		NewNoiseProvider("economic", model.Economic, catalog, seed, 0.5),
		NewNoiseProvider("natural_disaster", model.NaturalDisaster, catalog, seed, 0.3),
	}
}

// Name implements Provider.
func (p *NoiseProvider) Name() string { return p.name }

// Forecast returns one prediction per region: the most likely day within
// the horizon and its probability.
func (p *NoiseProvider) Forecast(ctx context.Context, days int) ([]Prediction, error) {
	out := make([]Prediction, 0, len(p.regions))
	for i, region := range p.regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bestDay, best := 1, -1.0
		for day := 1; day <= days; day++ {
			v := p.noise.Eval2(float64(i)*regionStep, float64(day)*dayStep)
			if v > best {
				bestDay, best = day, v
			}
		}
		prob := clamp(best * p.scale)
		out = append(out, Prediction{
			Type:        p.typ,
			Region:      region,
			Severity:    severityFor(best),
			Probability: prob,
			DayOffset:   bestDay,
			Source:      p.name,
		})
	}
	return out, nil
}

func severityFor(v float64) model.Severity {
	switch {
	case v >= 0.8:
		return model.Critical
	case v >= 0.65:
		return model.High
	case v >= 0.5:
		return model.Medium
	default:
		return model.Low
	}
}

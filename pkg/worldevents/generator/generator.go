// Package generator produces candidate world events from per-type rule
// tables over the port catalog.
//
// Generation is pure apart from the injected Source: given the same catalog,
// source sequence and clock reading, Generate returns the same event (modulo
// the ID function).
package generator

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// Generator creates candidate events. It never touches the registry;
// admission and insertion belong to the caller.
type Generator struct {
	catalog model.Catalog
	src     Source
	probs   map[model.EventType]float64
	newID   func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithProbabilities overrides per-type generation probabilities. Types not
// present keep their default.
func WithProbabilities(p map[model.EventType]float64) Option {
	return func(g *Generator) {
		maps.Copy(g.probs, p)
	}
}

// WithIDFunc replaces the UUID generator.
func WithIDFunc(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// New creates a generator over catalog drawing from src.
func New(catalog model.Catalog, src Source, opts ...Option) *Generator {
	g := &Generator{
		catalog: catalog,
		src:     src,
		probs:   maps.Clone(DefaultProbabilities),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Probability returns the per-call generation probability for t.
func (g *Generator) Probability(t model.EventType) float64 {
	return g.probs[t]
}

// Generate makes one probability draw for t and, if it passes, builds an
// Active event starting at now. It returns false when the draw fails, the
// type is unknown, or no rule has an eligible port.
func (g *Generator) Generate(t model.EventType, now time.Time) (model.WorldEvent, bool) {
	p, ok := profiles[t]
	if !ok {
		return model.WorldEvent{}, false
	}
	if g.src.Float64() >= g.probs[t] {
		return model.WorldEvent{}, false
	}

	ports := g.catalog.Ports()
	type candidate struct {
		rule  rule
		ports []model.Port
	}
	var candidates []candidate
	for _, r := range p.rules {
		var eligible []model.Port
		for _, port := range ports {
			if r.eligible(port) {
				eligible = append(eligible, port)
			}
		}
		if len(eligible) > 0 {
			candidates = append(candidates, candidate{rule: r, ports: eligible})
		}
	}
	if len(candidates) == 0 {
		return model.WorldEvent{}, false
	}

	c := candidates[g.src.IntN(len(candidates))]
	port := c.ports[g.src.IntN(len(c.ports))]
	sev := g.pickSeverity(c.rule.weights)
	return g.build(t, p, c.rule, port, sev, now), true
}

func (g *Generator) pickSeverity(weights [4]float64) model.Severity {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := g.src.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if x < w {
			return model.Severity(i)
		}
		x -= w
	}
	// Float rounding can leave x just past the last bucket.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return model.Severity(i)
		}
	}
	return model.Low
}

func (g *Generator) build(t model.EventType, p profile, r rule, port model.Port, sev model.Severity, now time.Time) model.WorldEvent {
	bounds := p.duration[sev]
	span := bounds[0] + g.src.Float64()*(bounds[1]-bounds[0])
	end := now.Add(time.Duration(span * float64(p.unit)))

	impacts := make([]model.Impact, len(r.impacts))
	for i, base := range r.impacts {
		m := base.Magnitude * p.multipliers[sev]
		if base.Kind.Capped() && m > 100 {
			m = 100
		}
		impacts[i] = model.Impact{Kind: base.Kind, Magnitude: m}
	}

	scope := r.scope(port, sev, p.radius)
	tags := []string{t.String(), r.key, sev.String()}
	if scope.Kind == model.ScopeGlobal {
		tags = append(tags, "global")
	}

	return model.WorldEvent{
		ID:               g.newID(),
		Type:             t,
		Title:            title(r.title, scope, port),
		Description:      fmt.Sprintf("%s %s event (%s)", sev, r.title, r.key),
		Severity:         sev,
		Scope:            scope,
		Status:           model.StatusActive,
		StartTime:        now,
		EstimatedEndTime: &end,
		Impacts:          impacts,
		Tags:             model.NormalizeTags(tags),
	}
}

func title(base string, scope model.Scope, port model.Port) string {
	switch scope.Kind {
	case model.ScopeGlobal:
		return base
	case model.ScopeCountry:
		return fmt.Sprintf("%s in %s", base, port.Country)
	case model.ScopeRegional:
		return fmt.Sprintf("%s near %s", base, port.Name)
	case model.ScopePort:
		return fmt.Sprintf("%s at %s", base, port.Name)
	case model.ScopeRoute:
		return fmt.Sprintf("%s on %s", base, scope.RouteID)
	default:
		return base
	}
}

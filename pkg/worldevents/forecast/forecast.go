// Package forecast merges predictions from independent providers into a
// single event forecast. Providers are called concurrently; a provider that
// fails, panics or times out is dropped from the result and reported as
// degraded instead of failing the whole forecast.
package forecast

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/observability"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// Prediction is one provider's estimate that an event will occur.
type Prediction struct {
	Type        model.EventType `json:"type"`
	Region      string          `json:"region"`
	Severity    model.Severity  `json:"severity"`
	Probability float64         `json:"probability"`
	// DayOffset is the day within the horizon the event is most likely,
	// starting at 1.
	DayOffset int    `json:"day_offset"`
	Source    string `json:"source"`
}

// Forecast is the merged result of one Generate call.
type Forecast struct {
	Days            int          `json:"days"`
	Predictions     []Prediction `json:"predictions"`
	ConfidenceLevel float64      `json:"confidence_level"`
	Degraded        []string     `json:"degraded,omitempty"`
	GeneratedAt     time.Time    `json:"generated_at"`
}

// Provider predicts events over a horizon of days.
type Provider interface {
	Name() string
	Forecast(ctx context.Context, days int) ([]Prediction, error)
}

type funcProvider struct {
	name string
	fn   func(context.Context, int) ([]Prediction, error)
}

func (p funcProvider) Name() string { return p.name }

func (p funcProvider) Forecast(ctx context.Context, days int) ([]Prediction, error) {
	return p.fn(ctx, days)
}

// Func adapts a function into a named Provider.
func Func(name string, fn func(ctx context.Context, days int) ([]Prediction, error)) Provider {
	return funcProvider{name: name, fn: fn}
}

// Forecaster fans out to its providers and merges their predictions.
type Forecaster struct {
	providers []Provider
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
}

// Option configures a Forecaster.
type Option func(*Forecaster)

// WithTimeout bounds each provider call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(f *Forecaster) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithClock sets the time source used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(f *Forecaster) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets the logger for degraded providers.
func WithLogger(l *slog.Logger) Option {
	return func(f *Forecaster) { f.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(f *Forecaster) {
		if m != nil {
			f.metrics = m
		}
	}
}

// WithSpans sets the span manager.
func WithSpans(sm observability.SpanManager) Option {
	return func(f *Forecaster) {
		if sm != nil {
			f.spans = sm
		}
	}
}

// New creates a Forecaster over providers.
func New(providers []Provider, opts ...Option) *Forecaster {
	f := &Forecaster{
		providers: slices.Clone(providers),
		timeout:   DefaultTimeout,
		now:       time.Now,
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = observability.EnrichLogger(f.logger, "forecast")
	return f
}

// Providers returns the provider names in call order.
func (f *Forecaster) Providers() []string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return names
}

type providerResult struct {
	predictions []Prediction
	err         error
}

// Generate calls every provider concurrently and merges the results,
// highest probability first. ConfidenceLevel is the mean probability of the
// merged predictions, or 0 when there are none.
func (f *Forecaster) Generate(ctx context.Context, days int) (Forecast, error) {
	if days <= 0 {
		return Forecast{}, weerrors.Invalid("days", "must be positive, got %d", days)
	}

	done := observability.TimedOperation()
	ctx, span := f.spans.StartForecastSpan(ctx, days)

	results := make([]providerResult, len(f.providers))
	var wg sync.WaitGroup
	for i, p := range f.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			pctx, pspan := f.spans.StartProviderSpan(ctx, p.Name())
			preds, err := f.call(pctx, p, days)
			f.spans.EndSpanWithError(pspan, err)
			results[i] = providerResult{predictions: preds, err: err}
		}(i, p)
	}
	wg.Wait()

	out := Forecast{
		Days:        days,
		Predictions: []Prediction{},
		GeneratedAt: f.now(),
	}
	for i, r := range results {
		name := f.providers[i].Name()
		if r.err != nil {
			observability.LogForecastDegraded(f.logger, name, r.err)
			out.Degraded = append(out.Degraded, name)
			continue
		}
		for _, p := range r.predictions {
			p.Probability = clamp(p.Probability)
			if p.Source == "" {
				p.Source = name
			}
			out.Predictions = append(out.Predictions, p)
		}
	}

	slices.SortStableFunc(out.Predictions, func(a, b Prediction) int {
		return cmp.Compare(b.Probability, a.Probability)
	})
	if n := len(out.Predictions); n > 0 {
		sum := 0.0
		for _, p := range out.Predictions {
			sum += p.Probability
		}
		out.ConfidenceLevel = sum / float64(n)
	}

	f.metrics.RecordForecast(ctx, len(out.Predictions), len(out.Degraded), done())
	f.spans.EndSpanWithError(span, nil)
	return out, nil
}

// call runs one provider under the per-provider timeout. A provider that
// ignores its context is abandoned when the timeout fires or the caller
// gives up; its goroutine finishes on its own.
func (f *Forecaster) call(parent context.Context, p Provider, days int) ([]Prediction, error) {
	ctx, cancel := context.WithTimeout(parent, f.timeout)
	defer cancel()

	ch := make(chan providerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- providerResult{err: &weerrors.PanicError{Operation: "provider " + p.Name(), Value: r}}
			}
		}()
		preds, err := p.Forecast(ctx, days)
		ch <- providerResult{predictions: preds, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name(), r.err)
		}
		return r.predictions, nil
	case <-ctx.Done():
		if err := parent.Err(); err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name(), err)
		}
		return nil, &weerrors.TimeoutError{Operation: "provider " + p.Name(), After: f.timeout}
	}
}

func clamp(p float64) float64 {
	switch {
	case p != p, p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

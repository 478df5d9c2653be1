package worldevents

import (
	"log/slog"
	"maps"
	"time"

	"github.com/randalmurphal/worldevents/pkg/worldevents/admission"
	"github.com/randalmurphal/worldevents/pkg/worldevents/archive"
	"github.com/randalmurphal/worldevents/pkg/worldevents/forecast"
	"github.com/randalmurphal/worldevents/pkg/worldevents/generator"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/notify"
	"github.com/randalmurphal/worldevents/pkg/worldevents/observability"
)

// Default task cadences and retry delays.
const (
	DefaultGenerateInterval = 5 * time.Minute
	DefaultUpdateInterval   = time.Minute
	DefaultCleanupInterval  = 10 * time.Minute

	DefaultGenerateRetry = 30 * time.Second
	DefaultUpdateRetry   = 10 * time.Second
	DefaultCleanupRetry  = time.Minute

	// DefaultMaxEventAge is the age after which cleanup expires an event
	// regardless of its estimated end.
	DefaultMaxEventAge = 365 * 24 * time.Hour
)

// Lifecycle thresholds applied by the update task.
const (
	// WeatherDecayAge is the age after which weather events lose one
	// severity level per update.
	WeatherDecayAge = 12 * time.Hour

	// PandemicEscalationAge is the age after which pandemics may gain a
	// severity level.
	PandemicEscalationAge = 168 * time.Hour

	// PandemicEscalationChance is the per-update probability of that step.
	PandemicEscalationChance = 0.10
)

// engineConfig holds everything Options can change.
type engineConfig struct {
	logger *slog.Logger
	now    func() time.Time
	source generator.Source
	seed   *uint64
	newID  func() string

	generateInterval time.Duration
	updateInterval   time.Duration
	cleanupInterval  time.Duration
	generateRetry    time.Duration
	updateRetry      time.Duration
	cleanupRetry     time.Duration
	maxEventAge      time.Duration

	admission       *admission.Controller
	probabilities   map[model.EventType]float64
	busConfig       notify.BusConfig
	archive         archive.Sink
	detectors       []notify.Detector
	providers       []forecast.Provider
	forecastTimeout time.Duration

	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		now:              time.Now,
		generateInterval: DefaultGenerateInterval,
		updateInterval:   DefaultUpdateInterval,
		cleanupInterval:  DefaultCleanupInterval,
		generateRetry:    DefaultGenerateRetry,
		updateRetry:      DefaultUpdateRetry,
		cleanupRetry:     DefaultCleanupRetry,
		maxEventAge:      DefaultMaxEventAge,
		busConfig:        notify.DefaultBusConfig,
		metrics:          observability.NoopMetrics{},
		spans:            observability.NoopSpanManager{},
	}
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithLogger sets the structured logger.
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// WithClock replaces time.Now. Tests use it to drive ticks against a
// simulated clock.
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSource sets the random source used for generation and escalation
// rolls. It takes precedence over WithSeed.
func WithSource(src generator.Source) Option {
	return func(c *engineConfig) { c.source = src }
}

// WithSeed seeds a deterministic random source.
func WithSeed(seed uint64) Option {
	return func(c *engineConfig) { c.seed = &seed }
}

// WithIDFunc replaces the UUID generator for new events.
func WithIDFunc(fn func() string) Option {
	return func(c *engineConfig) { c.newID = fn }
}

// WithCadence sets the generate, update and cleanup intervals. Zero values
// keep the current setting.
//
// Example:
//
//	engine, err := worldevents.New(catalog,
//	    worldevents.WithCadence(time.Minute, 10*time.Second, time.Minute))
func WithCadence(generate, update, cleanup time.Duration) Option {
	return func(c *engineConfig) {
		setPositive(&c.generateInterval, generate)
		setPositive(&c.updateInterval, update)
		setPositive(&c.cleanupInterval, cleanup)
	}
}

// WithRetryDelays sets the delay after a failed generate, update or
// cleanup run. Zero values keep the current setting.
func WithRetryDelays(generate, update, cleanup time.Duration) Option {
	return func(c *engineConfig) {
		setPositive(&c.generateRetry, generate)
		setPositive(&c.updateRetry, update)
		setPositive(&c.cleanupRetry, cleanup)
	}
}

// WithMaxEventAge sets the age at which cleanup expires any event.
// Default: 365 days
func WithMaxEventAge(d time.Duration) Option {
	return func(c *engineConfig) { setPositive(&c.maxEventAge, d) }
}

// WithAdmission replaces the admission controller.
func WithAdmission(ctrl *admission.Controller) Option {
	return func(c *engineConfig) { c.admission = ctrl }
}

// WithProbabilities overrides per-type generation probabilities.
func WithProbabilities(p map[model.EventType]float64) Option {
	return func(c *engineConfig) {
		if c.probabilities == nil {
			c.probabilities = make(map[model.EventType]float64)
		}
		maps.Copy(c.probabilities, p)
	}
}

// WithBusConfig configures the notification bus.
func WithBusConfig(cfg notify.BusConfig) Option {
	return func(c *engineConfig) { c.busConfig = cfg }
}

// WithArchive exports every resolved event to sink. The engine closes the
// sink on Stop.
func WithArchive(sink archive.Sink) Option {
	return func(c *engineConfig) { c.archive = sink }
}

// WithDetectors adds external subsystem listeners, run while the engine is
// started.
func WithDetectors(d ...notify.Detector) Option {
	return func(c *engineConfig) { c.detectors = append(c.detectors, d...) }
}

// WithForecastProviders sets the predictors behind GenerateEventForecast.
func WithForecastProviders(p ...forecast.Provider) Option {
	return func(c *engineConfig) { c.providers = append(c.providers, p...) }
}

// WithForecastTimeout bounds each provider call.
// Default: forecast.DefaultTimeout
func WithForecastTimeout(d time.Duration) Option {
	return func(c *engineConfig) { setPositive(&c.forecastTimeout, d) }
}

// WithMetrics enables metrics recording.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables trace spans for tasks and forecasts.
func WithTracing(sm observability.SpanManager) Option {
	return func(c *engineConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

func setPositive(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
